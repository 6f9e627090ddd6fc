package executor

import "runtime"

// CaptureStderrSupported reports whether redirecting a child's stderr into a
// buffer is reliable on goos. Redirected error handles break the cm client on
// Windows, so stderr stays attached to the parent there.
func CaptureStderrSupported(goos string) bool {
	return goos != "windows"
}

func captureStderrOnThisPlatform() bool {
	return CaptureStderrSupported(runtime.GOOS)
}
