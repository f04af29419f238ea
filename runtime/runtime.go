// ==============================================================================================
// FILE: runtime/runtime.go
// ==============================================================================================
// PACKAGE: runtime
// PURPOSE: Embeds the C++ runtime support text that generated C++
//          translation units include, and exposes it through Header and
//          Source. Neither the CLI nor the driver writes these files out.
// ==============================================================================================

package runtime

import _ "embed"

//go:embed ignis_runtime.h
var headerSource string

//go:embed ignis_runtime.cpp
var cppSource string

// Header returns the text of ignis_runtime.h.
func Header() string { return headerSource }

// Source returns the text of ignis_runtime.cpp.
func Source() string { return cppSource }
