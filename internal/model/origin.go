// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// OriginKind tags the variant of an Origin.
type OriginKind string

const (
	OriginUnknown OriginKind = ""
	OriginImport  OriginKind = "import"
	OriginService OriginKind = "service"
	OriginSession OriginKind = "session"
)

// Origin records how a credential was obtained. Exactly one of Label,
// Service or Session is meaningful, selected by Kind.
type Origin struct {
	Kind    OriginKind
	Label   string
	Service *Service
	Session *Session
}

// ImportOrigin builds an import origin with the given source label.
func ImportOrigin(label string) Origin {
	return Origin{Kind: OriginImport, Label: label}
}

// Address returns the host address the credential was obtained from. Only
// service and session origins resolve to a host.
func (o Origin) Address() string {
	switch o.Kind {
	case OriginService:
		if o.Service != nil {
			return o.Service.Host.Address
		}
	case OriginSession:
		if o.Session != nil {
			return o.Session.Host.Address
		}
	case OriginImport, OriginUnknown:
	}
	return ""
}
