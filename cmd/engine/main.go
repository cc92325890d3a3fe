// Copyright 2025 Agora Labs
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

// Package main is the entry point for the Agora debate engine.
//
// The engine is a multi-agent debate service that:
// - Routes context collections to direct fetch or vector search
// - Builds persona-grounded prompts from retrieved documents
// - Fans out concurrent generation calls, one per agent
// - Aggregates agent stances through a moderator model
//
// Usage:
//
//	./engine
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8000)
//	MONGODB_URI - MongoDB connection string
//	DATABASE_NAME - MongoDB database name
//	REDIS_URL - Redis cache URL (optional)
//	TOGETHER_API_KEY - Together AI API key
//	DATA_DIR - Seed data directory (default: util)
//	CONFIG_PATH - YAML config file path (optional)
package main

import (
	"fmt"
	"os"

	"agora/platform/debate"
)

func main() {
	if err := debate.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}
