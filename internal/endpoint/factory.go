// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import "time"

// Endpoints contains the REST paths of the transfer endpoint.
type Endpoints struct {
	Connect string
	Columns string
	Export  string
	Import  string
}

// DefaultEndpoints returns the paths served by `flatbridge serve`.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Connect: "/connect-store",
		Columns: "/get-columns",
		Export:  "/store-to-flatfile",
		Import:  "/flatfile-to-store",
	}
}

// New creates an API implementation talking HTTP to baseURL.
// A zero timeout leaves requests unbounded; the session enforces none itself.
func New(baseURL string, endpoints Endpoints, timeout time.Duration) API {
	return newHTTP(baseURL, endpoints, timeout)
}
