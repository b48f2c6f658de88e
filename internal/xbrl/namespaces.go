// Package xbrl reads XBRL instance documents into a flat list of facts,
// each annotated with its resolved reporting context.
//
// Extraction runs in two passes over one parsed document: contexts are
// resolved first (entity, period, dimensional scenario), then every element
// carrying a contextRef attribute is linked to its context. Both passes are
// read-only, so a parsed Document may be shared between goroutines.
//
// Usage:
//
//	facts, err := xbrl.ExtractFile("filing.xml")
//	if err != nil {
//	    var perr *xbrl.ParseError
//	    if errors.As(err, &perr) {
//	        // document is not well-formed; nothing was extracted
//	    }
//	}
package xbrl

// Namespace is one prefix/URI binding of the known namespace table.
type Namespace struct {
	Prefix string
	URI    string
}

// knownNamespaces lists the namespaces seen in Indian GAAP / Ind-AS filings.
// Order matters: when two prefixes share a URI the first one wins on reverse
// lookup (xs over xsd).
var knownNamespaces = [...]Namespace{
	{"xbrli", "http://www.xbrl.org/2003/instance"},
	{"xbrldi", "http://xbrl.org/2006/xbrldi"},
	{"ind-as", "http://www.icai.org/xbrl/taxonomy/2017-03-31/ind-as"},
	{"in-ca", "http://www.icai.org/xbrl/taxonomy/2017-03-31/in-ca"},
	{"link", "http://www.xbrl.org/2003/linkbase"},
	{"ind-as-roles", "http://www.icai.org/xbrl/taxonomy/2017-03-31/ind-as-roles"},
	{"xl", "http://www.xbrl.org/2003/XLink"},
	{"xs", "http://www.w3.org/2001/XMLSchema"},
	{"net", "http://www.xbrl.org/2009/role/net"},
	{"xbrldt", "http://xbrl.org/2005/xbrldt"},
	{"in-ca-types", "http://www.icai.org/xbrl/taxonomy/2017-03-31/in-ca-types"},
	{"ref", "http://www.xbrl.org/2006/ref"},
	{"num", "http://www.xbrl.org/dtr/type/numeric"},
	{"nonnum", "http://www.xbrl.org/dtr/type/non-numeric"},
	{"in-ci-ent", "http://www.icai.org/xbrl/taxonomy/2017-03-31/in-ca/in-ci-ent"},
	{"in-ca-roles", "http://www.icai.org/xbrl/taxonomy/2017-03-31/in-ca-roles"},
	{"xsd", "http://www.w3.org/2001/XMLSchema"},
	{"xlink", "http://www.w3.org/1999/xlink"},
	{"negated", "http://www.xbrl.org/2009/role/negated"},
	{"xsi", "http://www.w3.org/2001/XMLSchema-instance"},
	{"iso4217", "http://www.xbrl.org/2003/iso4217"},
}

// Namespace URIs the resolver navigates by.
const (
	nsInstance  = "http://www.xbrl.org/2003/instance"
	nsDimension = "http://xbrl.org/2006/xbrldi"
)

// prefixByURI is built once and never written again.
var prefixByURI = func() map[string]string {
	m := make(map[string]string, len(knownNamespaces))
	for _, ns := range knownNamespaces {
		if _, ok := m[ns.URI]; !ok {
			m[ns.URI] = ns.Prefix
		}
	}
	return m
}()

// PrefixFor returns the short prefix registered for uri, or "" when the URI
// is not in the known namespace table.
func PrefixFor(uri string) string {
	return prefixByURI[uri]
}

// Namespaces returns a copy of the known namespace table in declaration order.
func Namespaces() []Namespace {
	out := make([]Namespace, len(knownNamespaces))
	copy(out, knownNamespaces[:])
	return out
}
