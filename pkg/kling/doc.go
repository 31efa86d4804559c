// Package kling provides remote job adapters for the Kling video
// generation API.
//
// Kling credentials have the form "ACCESS_KEY:SECRET_KEY". Every
// request is authorized with a fresh short-lived token signed by the
// secret key; tokens are minted per request and never cached.
//
// # Usage
//
//	runner := remotejob.NewRunner()
//	adapter := kling.TextToVideoAdapter(os.Getenv("KLING_API_KEY"))
//
//	sink := storage.Local("out/video.mp4")
//	res, err := runner.Run(ctx, adapter, &kling.TextToVideoRequest{
//	    Model:  kling.ModelV1,
//	    Prompt: "a red fox running through snow",
//	    Mode:   kling.ModeStd,
//	}, sink)
//
// Every Kling response is wrapped in a {code, message, data} envelope;
// a non-zero code is reported as a provider rejection even when the
// HTTP status is 200.
package kling
