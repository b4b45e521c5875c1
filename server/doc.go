// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes the knowledge engine over the Model Context Protocol.
//
// Two tools are registered: "answer" takes {"query": "..."} and returns the
// structured response, and "health" reports store reachability. The server
// runs over stdio for local clients or over SSE for remote ones.
package server
