package replicate

// Pinned model versions for the bundled presets.
const (
	// MusicGenVersion is meta/musicgen.
	MusicGenVersion = "671ac645ce5e552cc63a54a2bbff63fcf798043ac68f86b6f8d6e7df5c6a5a57"

	// RembgVersion removes image backgrounds.
	RembgVersion = "fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"

	// RealESRGANVersion upscales images.
	RealESRGANVersion = "42fed1c4974146d4d2414e2be2c5277c7fcf05fcc3a73abf41610695738c1d7b"

	// ResembleEnhanceVersion denoises and enhances speech.
	ResembleEnhanceVersion = "93266a7e7f5805fb79bcf213b1a4e0ef2e45aff3c06eefd96c59e850c87fd6a2"

	// SAM2VideoVersion is meta/sam-2-video object tracking.
	SAM2VideoVersion = "33432afdfc06a10da6b4018932893d39b0159f838b6d11dd1236dff85cc5ec1d"
)

// MusicRequest builds a MusicGen prediction: seconds of audio from a
// text prompt, encoded as mp3.
func MusicRequest(prompt string, seconds int) *PredictionRequest {
	return &PredictionRequest{
		Version: MusicGenVersion,
		Input: map[string]any{
			"prompt":                 prompt,
			"duration":               seconds,
			"model_version":          "stereo-melody-large",
			"output_format":          "mp3",
			"normalization_strategy": "peak",
		},
	}
}

// RembgRequest builds a background removal prediction from a local
// image file.
func RembgRequest(imagePath string) (*PredictionRequest, error) {
	uri, err := DataURI(imagePath)
	if err != nil {
		return nil, err
	}
	return &PredictionRequest{
		Version: RembgVersion,
		Input:   map[string]any{"image": uri},
	}, nil
}

// UpscaleRequest builds a Real-ESRGAN upscale prediction from a local
// image file.
func UpscaleRequest(imagePath string, scale int, faceEnhance bool) (*PredictionRequest, error) {
	uri, err := DataURI(imagePath)
	if err != nil {
		return nil, err
	}
	return &PredictionRequest{
		Version: RealESRGANVersion,
		Input: map[string]any{
			"image":        uri,
			"scale":        scale,
			"face_enhance": faceEnhance,
		},
	}, nil
}

// EnhanceRequest builds a speech enhancement prediction. audioSource
// is a URL or a data: URI (see DataURI for local files).
func EnhanceRequest(audioSource string, denoise bool) *PredictionRequest {
	return &PredictionRequest{
		Version: ResembleEnhanceVersion,
		Input: map[string]any{
			"audio":   audioSource,
			"solver":  "Midpoint",
			"denoise": denoise,
			"nfe":     64,
			"tau":     0.5,
		},
	}
}

// TrackRequest builds a SAM-2 video object tracking prediction.
// videoURL must be publicly reachable; the result is structured JSON
// delivered as an inline artifact. prompt optionally guides tracking.
func TrackRequest(videoURL, prompt string) *PredictionRequest {
	input := map[string]any{"video": videoURL}
	if prompt != "" {
		input["prompt"] = prompt
	}
	return &PredictionRequest{
		Version: SAM2VideoVersion,
		Input:   input,
	}
}
