// Package supasaas is a convenience layer over the Supabase SDKs for
// building SaaS backends in Go. It wraps authentication, table CRUD and
// object storage behind small facades that log every call, validate their
// dynamically typed arguments and return forgiving sentinel values where a
// hard failure would force boilerplate on the caller.
//
// Overview:
// The module provides modular pieces that share one client registry:
// 1. Credentials (Login): explicit or environment-based project credentials.
// 2. Registry (Client): anonymous and service-role SDK handles, rebuilt on demand.
// 3. Facades (Auth, DB, Storage): the operations an application calls.
// 4. Plumbing (logging, validate): the injected callbacks every facade carries.
//
// The design favors dependency injection over ambient state. Every facade
// takes the registry it should use, and the logging and validation
// callbacks can be swapped with options for testing or custom sinks.
//
// Main sub-packages:
//
// 1. logging:
//   - Single message shape for every facade call, rendered onto zerolog.
//   - Pluggable process-wide sink, YAML-configurable output.
//
// 2. validate:
//   - Runtime presence and type checks for values Go's type system cannot
//     pin down (filter values, row payloads).
//   - Struct-tag validation for configuration records.
//
// Quick start:
//
// Loading credentials from the environment and reading a row.
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"reflect"
//
//		supasaas "github.com/ashrobertsdragon/SupaSaaS"
//	)
//
//	func main() {
//		login, err := supasaas.LoginFromEnv()
//		if err != nil {
//			log.Fatalf("loading credentials: %v", err)
//		}
//
//		client := supasaas.NewClient(login)
//		db := supasaas.NewDB(client)
//
//		rows := db.SelectRow(context.Background(), "users",
//			map[string]any{"email": "user@example.com"},
//			reflect.TypeOf(""), nil, false)
//		log.Printf("rows: %v", rows)
//	}
package supasaas
