package logupload

import "strings"

// Location schemes understood by the Router.
const (
	SchemeFile  = "file"
	SchemeLatch = "latch"
	SchemeS3    = "s3"
)

// ParseLocation splits "scheme://rest" into its scheme and the part after "://".
// A location without a scheme returns "" and the location unchanged.
func ParseLocation(location string) (scheme, rest string) {
	if i := strings.Index(location, "://"); i > 0 {
		return strings.ToLower(location[:i]), location[i+3:]
	}
	return "", location
}

// splitHostPath splits "host/a/b" into "host" and "a/b".
// "/a/b" (an empty host, as in latch:///a/b) yields "" and "a/b".
func splitHostPath(rest string) (host, path string) {
	host, path, _ = strings.Cut(rest, "/")
	return host, strings.TrimLeft(path, "/")
}

// RemotePath joins base and segments with exactly one slash between parts,
// keeping the scheme and authority of base intact.
//
//	RemotePath("latch:///logs", "pipe", "run-1", "nextflow.log")
//	  == "latch:///logs/pipe/run-1/nextflow.log"
func RemotePath(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	if strings.HasSuffix(base, ":///") || strings.HasSuffix(base, "://") {
		out = base
	}
	for _, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		if !strings.HasSuffix(out, "/") {
			out += "/"
		}
		out += seg
	}
	return out
}
