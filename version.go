package xc

import "github.com/Masterminds/semver/v3"

// APIVersion is the semantic version of the runtime facade. Extension
// registrations may pin a constraint against it, see RegisterExtension.
const APIVersion = "1.4.0"

var apiVersion = semver.MustParse(APIVersion)
