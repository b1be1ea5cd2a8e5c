// Package apimanager is the public surface of the HTTP client.
//
// A Manager is built once from configuration and owns the whole stack: the
// trust manager for the root domain, one transport backend, the request
// pipeline, debug logging and metrics. Application code only sees
// RequestData, RequestEndpoint, RequestDecodable and CancelAllRequests, and
// never depends on which backend is installed.
//
//	m, err := apimanager.New(config.LoadOrDefault(), apimanager.WithLogger(logger))
//	...
//	apimanager.RequestDecodable(m, ctx, "https://api.example.com/items", types.MethodGet,
//		func(status int, outcome types.Outcome[[]Item]) {
//			items, err := outcome.Get()
//			...
//		},
//		apimanager.WithHeader("Authorization", "Bearer "+token),
//	)
//
// Completions run on a goroutine owned by the pipeline; callers that need
// their own execution context resynchronize inside the completion.
package apimanager
