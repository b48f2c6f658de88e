package xbrl

import "strings"

// PeriodType distinguishes duration from instant periods.
type PeriodType string

const (
	PeriodDuration PeriodType = "duration"
	PeriodInstant  PeriodType = "instant"
)

// MemberType is the kind of dimensional scenario member.
type MemberType string

const (
	TypedMember    MemberType = "typedMember"
	ExplicitMember MemberType = "explicitMember"
)

// Entity identifies the reporting entity of a context.
type Entity struct {
	Scheme string `json:"scheme,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Period is either a duration (start and end date) or an instant. A context
// with neither form has a zero Period, which marshals as {}.
type Period struct {
	Type      PeriodType `json:"type,omitempty"`
	StartDate string     `json:"startDate,omitempty"`
	EndDate   string     `json:"endDate,omitempty"`
	Instant   string     `json:"instant,omitempty"`
}

// Date returns the date the period ends on: the instant, or the end date of
// a duration. It is "" for an empty period.
func (p Period) Date() string {
	switch p.Type {
	case PeriodInstant:
		return p.Instant
	case PeriodDuration:
		return p.EndDate
	}
	return ""
}

// Member is one dimensional qualifier of a scenario. Dimension keeps the
// qualified name as written; Value is reduced to its local name.
type Member struct {
	Type      MemberType `json:"type"`
	Dimension string     `json:"dimension"`
	Value     string     `json:"value"`
}

// Context is a resolved xbrli:context.
type Context struct {
	ID       string   `json:"id"`
	Entity   Entity   `json:"entity"`
	Period   Period   `json:"period"`
	Scenario []Member `json:"scenario"`
}

// Dimensional reports whether the context carries any scenario member.
func (c *Context) Dimensional() bool {
	return len(c.Scenario) > 0
}

// Contexts resolves every top-level xbrli:context of the document, keyed by
// id. Incomplete contexts are kept under-populated rather than rejected. If
// an id repeats, the later context wins.
func (d *Document) Contexts() map[string]*Context {
	out := make(map[string]*Context)
	for _, el := range d.root.children {
		if el.name.Space != nsInstance || el.name.Local != "context" {
			continue
		}
		ctx := resolveContext(el)
		out[ctx.ID] = ctx
	}
	return out
}

func resolveContext(el *element) *Context {
	id, _ := el.attr("id")
	ctx := &Context{
		ID:       id,
		Scenario: []Member{},
	}

	if ident := childAt(el, "entity", "identifier"); ident != nil {
		ctx.Entity.Scheme, _ = ident.attr("scheme")
		ctx.Entity.Value = strings.TrimSpace(ident.text)
	}

	if period := el.child(nsInstance, "period"); period != nil {
		start, hasStart := period.childText(nsInstance, "startDate")
		end, hasEnd := period.childText(nsInstance, "endDate")
		instant, hasInstant := period.childText(nsInstance, "instant")

		switch {
		case hasStart && hasEnd:
			ctx.Period = Period{Type: PeriodDuration, StartDate: start, EndDate: end}
		case hasInstant:
			ctx.Period = Period{Type: PeriodInstant, Instant: instant}
		}
	}

	if scenario := el.child(nsInstance, "scenario"); scenario != nil {
		ctx.Scenario = resolveScenario(scenario)
	}
	return ctx
}

// resolveScenario lists typed members before explicit members, each group
// in document order. A typed member without a value element is skipped.
func resolveScenario(scenario *element) []Member {
	var typed, explicit []Member
	for _, e := range scenario.children {
		if e.name.Space != nsDimension {
			continue
		}
		dim, _ := e.attr("dimension")
		dim = strings.TrimSpace(dim)

		switch e.name.Local {
		case "typedMember":
			if len(e.children) == 0 {
				continue
			}
			typed = append(typed, Member{Type: TypedMember, Dimension: dim, Value: localName(e.children[0].text)})
		case "explicitMember":
			explicit = append(explicit, Member{Type: ExplicitMember, Dimension: dim, Value: localName(e.text)})
		}
	}

	members := make([]Member, 0, len(typed)+len(explicit))
	members = append(members, typed...)
	return append(members, explicit...)
}

func childAt(el *element, path ...string) *element {
	cur := el
	for _, local := range path {
		if cur = cur.child(nsInstance, local); cur == nil {
			return nil
		}
	}
	return cur
}

// localName strips any prefix up to the last colon.
func localName(qname string) string {
	qname = strings.TrimSpace(qname)
	if i := strings.LastIndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
