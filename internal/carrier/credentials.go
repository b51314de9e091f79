package carrier

import "strings"

// Default Sendify production endpoints
const (
	DefaultBookURL  = "https://app.sendify.se/external/v1/shipments"
	DefaultPrintURL = "https://app.sendify.se/external/v1/shipments/print"
)

// Credentials is the resolved key/endpoint set for one carrier request.
// Never persisted as domain data.
type Credentials struct {
	APIKey      string
	BookURL     string
	PrintURL    string
	ProductsURL string
}

// Resolver picks the API key and target endpoints for a request.
//
// Key precedence: an explicit per-request value (the x-api-key header) wins
// over the server-held key. Endpoint precedence: explicit configuration
// overrides win over the hard-coded production defaults. This lets production
// centralize the secret while an operator can still override it transiently
// for testing, without code changes.
type Resolver struct {
	serverKey string
	bookURL   string
	printURL  string
}

// NewResolver creates a resolver with the server-held key and optional
// endpoint overrides. Empty overrides fall back to the production defaults.
func NewResolver(serverKey, bookURL, printURL string) *Resolver {
	if bookURL == "" {
		bookURL = DefaultBookURL
	}
	if printURL == "" {
		printURL = DefaultPrintURL
	}
	return &Resolver{
		serverKey: serverKey,
		bookURL:   bookURL,
		printURL:  printURL,
	}
}

// Resolve produces the credentials for one request. requestKey is the
// caller-supplied override, usually from the x-api-key header. When neither
// a request key nor a server key is present it returns a
// KindMissingCredentials error and no network call must be made.
func (r *Resolver) Resolve(requestKey string) (Credentials, error) {
	key := strings.TrimSpace(requestKey)
	if key == "" {
		key = r.serverKey
	}
	if key == "" {
		return Credentials{}, &Error{
			Kind:    KindMissingCredentials,
			Message: "Sendify API key is missing; configure SENDIFY_API_KEY on the server or supply an x-api-key header",
		}
	}

	return Credentials{
		APIKey:      key,
		BookURL:     r.bookURL,
		PrintURL:    r.printURL,
		ProductsURL: strings.TrimSuffix(r.bookURL, "/shipments") + "/products",
	}, nil
}

// HasServerKey reports whether a server-held key is configured.
func (r *Resolver) HasServerKey() bool {
	return r.serverKey != ""
}
