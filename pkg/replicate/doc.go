// Package replicate provides a remote job adapter for the Replicate
// predictions API, plus request presets for a few well-known models.
//
// Any model runs through the generic adapter:
//
//	runner := remotejob.NewRunner()
//	adapter := replicate.Adapter(os.Getenv("REPLICATE_API_TOKEN"))
//
//	res, err := runner.Run(ctx, adapter, &replicate.PredictionRequest{
//	    Version: "...model version id...",
//	    Input:   map[string]any{"prompt": "lofi beat"},
//	}, sink)
//
// Presets pin model versions and build their inputs:
//
//	req := replicate.MusicRequest("upbeat jazz", 15)
//	req, err := replicate.RembgRequest("photo.png")
//
// Prediction output is a URL, a list of URLs, or arbitrary JSON
// depending on the model; the adapter normalizes all three into
// artifact locators (structured output becomes an inline data:
// locator holding the JSON).
package replicate
