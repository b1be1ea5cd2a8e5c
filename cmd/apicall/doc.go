// Package main is the apicall command, a thin CLI over the API manager.
//
// It loads configuration the same way an embedding application would
// (optional .env file, then API_* environment variables, then flags), issues
// one request and writes the response body to stdout. Status lines, debug
// output and metrics go to stderr.
//
// Architecture:
//
//	apicall → apimanager → pipeline → transport (resty | retryablehttp)
//	                                     ↳ trust (pinning for API_ROOT_URL)
//
// Usage:
//
//	# Raw GET with query parameters
//	apicall request https://api.example.com/items -p page=2
//
//	# POST a JSON body, pinned to the certificates in ./pins
//	API_ROOT_URL=https://api.example.com API_PINS_DIR=./pins \
//	  apicall request items --endpoint -X POST -d '{"name":"first"}' --pinning certificate
//
//	# Form-encoded PUT with debug logging and a metrics dump
//	apicall request https://api.example.com/items/1 -X PUT -p name=second --encoding url --debug --metrics
//
//	# Inspect a pin bundle
//	apicall pins ./pins
package main
