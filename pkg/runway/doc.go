// Package runway provides a remote job adapter for the Runway video
// generation API.
//
// Runway generates video from a reference image. The image travels as
// a data: URI or a public URL in promptImage; ImageDataURI converts a
// local file. Every request pins the API version with the
// X-Runway-Version header.
//
// # Usage
//
//	runner := remotejob.NewRunner()
//	adapter := runway.Adapter(os.Getenv("RUNWAY_API_SECRET"))
//
//	image, _ := runway.ImageDataURI("photo.png")
//	sink := storage.Local("out/animated.mp4")
//	res, err := runner.Run(ctx, adapter, &runway.ImageToVideoRequest{
//	    PromptImage: image,
//	    PromptText:  "camera slowly zooms in",
//	    Ratio:       runway.RatioLandscape,
//	}, sink)
package runway
