// Package grpcserver exposes OrderService as the crossbook.v1.Matching gRPC
// service. Messages are plain structs carried by a JSON codec, and the
// service descriptor is declared by hand in service_desc.go.
package grpcserver
