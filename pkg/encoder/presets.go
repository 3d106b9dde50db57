package encoder

// Output encoding presets applied by the composition orchestrator. The
// filter graph decides what is drawn, these decide how the result is encoded
var (
	// H264Medium The default export target : widely playable, reasonable
	// size/speed tradeoff
	H264Medium = []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23"}
	// H264Fast Preview-quality export
	H264Fast = []string{"-c:v", "libx264", "-preset", "ultrafast", "-crf", "28"}
	// AAC192 The default audio target
	AAC192 = []string{"-c:a", "aac", "-b:a", "192k"}
)

// OutputPreset Resolve a preset name from a composition request, falling
// back to the default on anything unknown
func OutputPreset(name string) []string {
	switch name {
	case "fast", "preview":
		return H264Fast
	default:
		return H264Medium
	}
}
