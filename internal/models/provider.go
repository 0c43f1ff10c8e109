package models

import "fmt"

// Provider identifies one of the supported social platforms.
type Provider string

const (
	ProviderInstagram Provider = "instagram"
	ProviderFacebook  Provider = "facebook"
	ProviderTwitter   Provider = "twitter"
	ProviderLinkedIn  Provider = "linkedin"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderFacebook, ProviderInstagram, ProviderTwitter, ProviderLinkedIn}

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderInstagram, ProviderFacebook, ProviderTwitter, ProviderLinkedIn:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Provider) String() string {
	return string(p)
}

// PageBased reports whether the provider publishes through a page or
// organization identity instead of the personal one.
func (p Provider) PageBased() bool {
	switch p {
	case ProviderInstagram, ProviderFacebook, ProviderLinkedIn:
		return true
	}
	return false
}
