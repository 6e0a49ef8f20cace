// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command blockplanner plans arm movements in the blocks world.
//
// Usage:
//
//	blockplanner plan "holding(e)"
//	blockplanner plan --world my-world.yaml "ontop(e,floor) | inside(e,k)"
//	blockplanner plan -f "leftof(e,f)" -f "rightof(e,f)" --steps
//	blockplanner check "ontop(e,floor)"
//	blockplanner legal inside f k
//	blockplanner simulate "p r r d"
//	blockplanner worlds show medium
//	blockplanner watch --world my-world.yaml "holding(e)"
//	blockplanner serve
//
// Configuration is read from --config (YAML or JSON), then overridden by
// BLOCKPLANNER_* environment variables and finally by flags.
//
// Example requests against "serve":
//
//	curl -X POST http://localhost:8089/v1/blockplanner/plan \
//	  -H "Content-Type: application/json" \
//	  -d '{"world": {"example": "small"}, "formula": "holding(e)"}'
package main

import (
	"os"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
