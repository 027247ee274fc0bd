// Package proxy6 provides a client for the proxy6.net reseller API.
//
// Every API method is a GET to <base>/<apikey>/<method>?<params>. The provider
// answers with a JSON object; a failed call carries an error marker and a
// numeric error_id, which this package turns into a typed *Error.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := proxy6.NewClient(
//		"your-api-key",
//		logger,
//		proxy6.WithTimeout(30*time.Second),
//		proxy6.WithRateLimit(3, time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	price, err := client.GetPrice(ctx, 10, 30, proxy6.VersionIPv4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(price.Price, price.Currency)
//
// Non-blocking variants live on AsyncClient:
//
//	fut := client.Async().GetProxies(ctx, proxy6.StateActive, "")
//	proxies, err := fut.Await(ctx)
//
// # Pacing and retries
//
// Requests are spaced by a Pacer (one second by default). The provider
// answers 503 when it is throttling; such answers are retried up to the
// configured ceiling, after which the call fails with KindRateLimited. The
// retry budget belongs to the call, so concurrent calls do not share it.
//
// # Error Handling
//
// All failures are *Error values tagged with a Kind. Use errors.Is with the
// package sentinels to branch on the kind:
//
//	if errors.Is(err, proxy6.ErrInsufficientBalance) {
//		// top up
//	}
//
// Argument errors are raised before any network traffic.
package proxy6
