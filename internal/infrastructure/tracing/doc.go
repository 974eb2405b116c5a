/*
Package tracing provides lightweight request tracing for the mode manager.

Every inbound HTTP request and gRPC call gets a span; spans are collected on a
buffered channel and logged through zap by a background goroutine. Errors are
logged at error level, everything else at debug level.

Trace context travels in the X-Trace-ID and X-Span-ID headers (lower-cased in
gRPC metadata). Identifiers are ULIDs with the req_ prefix.

# Usage

	tracer := tracing.New("modemanager", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	server := grpc.NewServer(
	    grpc.ChainUnaryInterceptor(tracing.GRPCUnaryInterceptor(tracer)),
	    grpc.ChainStreamInterceptor(tracing.GRPCStreamInterceptor(tracer)),
	)
*/
package tracing
