package compiler

import "strings"

// superscripts maps the unicode superscripts seen in the source corpus onto
// caret exponents, which the caret pass then rewrites into pow calls.
var superscripts = strings.NewReplacer(
	"²", "^2",
	"³", "^3",
	"π", "pi",
)

// Normalize rewrites formula text into the expression dialect the parser
// accepts: unicode superscripts become caret exponents, and every caret
// exponentiation becomes a call to the whitelisted pow function. Carets are
// rewritten right to left so chained exponentiation stays right-associative,
// matching the notation of the source corpus.
func Normalize(formula string) string {
	s := superscripts.Replace(formula)
	for {
		i := strings.LastIndexByte(s, '^')
		if i < 0 {
			return s
		}
		lStart := leftOperandStart(s, i)
		rEnd := rightOperandEnd(s, i)
		base := strings.TrimSpace(s[lStart:i])
		exp := strings.TrimSpace(s[i+1 : rEnd])
		s = s[:lStart] + "pow(" + base + ", " + exp + ")" + s[rEnd:]
	}
}

// leftOperandStart finds the start index of the operand ending just before
// the caret at position i: an identifier or number, or a balanced
// parenthesized group.
func leftOperandStart(s string, i int) int {
	j := i - 1
	for j >= 0 && s[j] == ' ' {
		j--
	}
	if j < 0 {
		return i
	}
	if s[j] == ')' {
		depth := 0
		for ; j >= 0; j-- {
			switch s[j] {
			case ')':
				depth++
			case '(':
				depth--
				if depth == 0 {
					// Include a function name directly before the group.
					k := j - 1
					for k >= 0 && isSymbolChar(s[k]) {
						k--
					}
					return k + 1
				}
			}
		}
		return 0
	}
	for j >= 0 && isSymbolChar(s[j]) {
		j--
	}
	return j + 1
}

// rightOperandEnd finds the index one past the operand starting just after
// the caret at position i.
func rightOperandEnd(s string, i int) int {
	j := i + 1
	for j < len(s) && s[j] == ' ' {
		j++
	}
	if j < len(s) && s[j] == '-' {
		j++
	}
	if j < len(s) && s[j] == '(' {
		return balancedGroupEnd(s, j)
	}
	for j < len(s) && isSymbolChar(s[j]) {
		j++
	}
	// A call's argument list belongs to the exponent.
	if j < len(s) && s[j] == '(' {
		return balancedGroupEnd(s, j)
	}
	return j
}

// balancedGroupEnd returns the index one past the parenthesized group
// opening at j.
func balancedGroupEnd(s string, j int) int {
	depth := 0
	for ; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// isSymbolChar reports whether c can appear inside an identifier or numeric
// literal (including scientific notation).
func isSymbolChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.':
		return true
	default:
		return false
	}
}
