// Package elevenlabs provides a remote job adapter for ElevenLabs
// dubbing plus a client for the synchronous speech endpoints.
//
// Dubbing is asynchronous: the media file is uploaded as a multipart
// form, the project is polled until it reaches "dubbed", and the
// dubbed tracks are downloaded from an authenticated endpoint. Text to
// speech and sound effects answer in one call with raw audio bytes.
//
// # Dubbing
//
//	runner := remotejob.NewRunner()
//	adapter := elevenlabs.DubAdapter(os.Getenv("ELEVENLABS_API_KEY"))
//
//	sink := storage.Local("out/dubbed_es.mp3")
//	res, err := runner.Run(ctx, adapter, &elevenlabs.DubRequest{
//	    FilePath:   "talk.mp4",
//	    TargetLang: "es",
//	}, sink)
//
// # Speech
//
//	client := elevenlabs.NewClient(os.Getenv("ELEVENLABS_API_KEY"))
//	audio, err := client.TextToSpeech(ctx, &elevenlabs.SpeechRequest{
//	    Text:    "Hello from Go",
//	    VoiceID: elevenlabs.VoiceBella,
//	})
package elevenlabs
