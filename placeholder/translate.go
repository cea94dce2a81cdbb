package placeholder

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-pgwire/pgwire/codes"
	"github.com/go-pgwire/pgwire/pgerror"
)

// scanner state, mirroring the character-by-character state machine this
// translator is grounded on: OUTSIDE a quoted region, inside a single-quote
// string, inside a quoted identifier, inside an E'...' escaped string, and
// inside a named-parameter token.
const (
	stateOutside = iota
	stateInsideSQ
	stateInsideQI
	stateInsideES
	stateInsideParamName
)

// Translation is the result of translating one query: the rewritten SQL
// using $N placeholders, and a Remap that reorders a caller's arguments to
// match that numbering.
type Translation struct {
	SQL   string
	Remap Remap
}

// Remap reorders args (a []any for positional styles, a map[string]any for
// named styles) into the []any a Bind message expects, indexed by $N - 1.
type Remap func(args any) ([]any, error)

// Translate rewrites query from style into canonical $N placeholders.
func Translate(style Style, query string) (Translation, error) {
	s := &scanner{style: style}
	if err := s.run(query); err != nil {
		return Translation{}, err
	}

	switch s.style {
	case Numeric, Qmark, Format:
		return Translation{SQL: s.out.String(), Remap: positionalRemap}, nil
	default:
		names := s.orderedNames
		return Translation{SQL: s.out.String(), Remap: namedRemap(names)}, nil
	}
}

func positionalRemap(args any) ([]any, error) {
	switch a := args.(type) {
	case nil:
		return nil, nil
	case []any:
		return a, nil
	default:
		return nil, fmt.Errorf("pgwire: positional parameter style requires []any arguments, got %T", args)
	}
}

func namedRemap(names []string) Remap {
	return func(args any) ([]any, error) {
		m, ok := args.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pgwire: named parameter style requires map[string]any arguments, got %T", args)
		}
		out := make([]any, len(names))
		for i, name := range names {
			v, ok := m[name]
			if !ok {
				return nil, pgerror.NewProgrammingError(codes.UndefinedParameter, pgerror.LevelError, "no value supplied for parameter %q", name)
			}
			out[i] = v
		}
		return out, nil
	}
}

type scanner struct {
	style        Style
	out          strings.Builder
	state        int
	paramCounter int
	orderedNames []string
	nameIndex    map[string]int
	inQuoteEsc   bool
	inParamEsc   bool
	curName      strings.Builder
}

func (s *scanner) run(query string) error {
	runes := []rune(query)
	var prev rune
	for i, c := range runes {
		var next rune
		hasNext := i+1 < len(runes)
		if hasNext {
			next = runes[i+1]
		}

		if err := s.step(c, prev, next, hasNext); err != nil {
			return err
		}
		prev = c
	}
	if s.state == stateInsideParamName {
		s.resolveName()
	}
	return nil
}

func (s *scanner) nextParam() string {
	s.paramCounter++
	return "$" + strconv.Itoa(s.paramCounter)
}

func (s *scanner) resolveName() {
	name := s.curName.String()
	s.curName.Reset()

	if s.nameIndex == nil {
		s.nameIndex = make(map[string]int)
	}
	idx, ok := s.nameIndex[name]
	if !ok {
		s.orderedNames = append(s.orderedNames, name)
		idx = len(s.orderedNames)
		s.nameIndex[name] = idx
	}
	s.out.WriteString("$" + strconv.Itoa(idx))
}

func isNameChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

func (s *scanner) step(c, prev, next rune, hasNext bool) error {
	switch s.state {
	case stateOutside:
		return s.stepOutside(c, prev, next, hasNext)
	case stateInsideSQ:
		return s.stepQuoted(c, next, hasNext, '\'')
	case stateInsideQI:
		return s.stepQuoted(c, next, hasNext, '"')
	case stateInsideES:
		return s.stepEscapedQuote(c, prev, next, hasNext)
	case stateInsideParamName:
		return s.stepParamName(c, prev, next, hasNext)
	}
	return nil
}

func (s *scanner) stepOutside(c, prev, next rune, hasNext bool) error {
	switch {
	case c == '\'':
		s.out.WriteRune(c)
		if prev == 'E' {
			s.state = stateInsideES
		} else {
			s.state = stateInsideSQ
		}
	case c == '"':
		s.out.WriteRune(c)
		s.state = stateInsideQI
	case s.style == Qmark && c == '?':
		s.out.WriteString(s.nextParam())
	case s.style == Numeric && c == ':':
		s.out.WriteRune('$')
	case s.style == Named && c == ':':
		s.state = stateInsideParamName
	case s.style == Pyformat && c == '%' && hasNext && next == '(':
		s.state = stateInsideParamName
	case (s.style == Format || s.style == Pyformat) && c == '%':
		s.style = Format
		if s.inParamEsc {
			s.inParamEsc = false
			s.out.WriteRune(c)
		} else if hasNext && next == '%' {
			s.inParamEsc = true
		} else if hasNext && next == 's' {
			s.state = stateInsideParamName
			s.out.WriteString(s.nextParam())
		} else {
			return pgerror.ErrQueryParameterParse
		}
	default:
		s.out.WriteRune(c)
	}
	return nil
}

func (s *scanner) stepQuoted(c, next rune, hasNext bool, closer rune) error {
	if c == closer {
		s.out.WriteRune(c)
		if s.inQuoteEsc {
			s.inQuoteEsc = false
		} else if hasNext && next == closer {
			s.inQuoteEsc = true
		} else {
			s.state = stateOutside
		}
		return nil
	}
	return s.stepQuotedEscape(c, next, hasNext)
}

func (s *scanner) stepEscapedQuote(c, prev, next rune, hasNext bool) error {
	if c == '\'' && prev != '\\' {
		s.out.WriteRune(c)
		s.state = stateOutside
		return nil
	}
	return s.stepQuotedEscape(c, next, hasNext)
}

// stepQuotedEscape handles the "%" escape-tolerance rule shared by all three
// quoted states: only a doubled "%%" is tolerated inside a quoted literal
// when the style is format-like, anything else is a parse error.
func (s *scanner) stepQuotedEscape(c, next rune, hasNext bool) error {
	if (s.style == Pyformat || s.style == Format) && c == '%' {
		if s.inParamEsc {
			s.inParamEsc = false
			s.out.WriteRune(c)
			return nil
		}
		if hasNext && next == '%' {
			s.inParamEsc = true
			return nil
		}
		return pgerror.ErrQueryParameterParse
	}
	s.out.WriteRune(c)
	return nil
}

func (s *scanner) stepParamName(c, prev, next rune, hasNext bool) error {
	switch s.style {
	case Named:
		s.curName.WriteRune(c)
		if !hasNext || !isNameChar(next) {
			s.state = stateOutside
			s.resolveName()
		}
	case Pyformat:
		switch {
		case prev == ')' && c == 's':
			s.state = stateOutside
			s.resolveName()
		case c == '(' || c == ')':
			// delimiters, not part of the name
		default:
			s.curName.WriteRune(c)
		}
	case Format:
		// the single 's' following a bare "%s" placeholder; already emitted.
		s.state = stateOutside
	}
	return nil
}
