// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package version

import "testing"

func TestGet(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	if got := Get(); got != orig {
		t.Errorf("Get() = %q, want %q", got, orig)
	}

	Version = ""
	if got := Get(); got != "dev" {
		t.Errorf("Get() with empty version = %q, want \"dev\"", got)
	}
}
