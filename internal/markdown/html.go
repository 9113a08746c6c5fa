package markdown

import "regexp"

const (
	tagName        = `[A-Za-z][A-Za-z0-9-]*`
	attrName       = `[a-zA-Z_:][a-zA-Z0-9:._-]*`
	unquotedValue  = "[^\"'=<>`\\x00-\\x20]+"
	attrValue      = `(?:` + unquotedValue + `|'[^']*'|"[^"]*")`
	attrValueSpec  = `(?:\s*=\s*` + attrValue + `)`
	attribute      = `(?:\s+` + attrName + attrValueSpec + `?)`
	openTag        = `<` + tagName + attribute + `*\s*/?>`
	closeTag       = `</` + tagName + `\s*>`
	htmlComment    = `<!-->|<!--->|<!--[\s\S]*?-->`
	procInstr      = `<\?[\s\S]*?\?>`
	declaration    = `<![A-Za-z]+[^>]*>`
	cdata          = `<!\[CDATA\[[\s\S]*?\]\]>`
	blockTagNames  = `address|article|aside|base|basefont|blockquote|body|caption|center|col|colgroup|dd|details|dialog|dir|div|dl|dt|fieldset|figcaption|figure|footer|form|frame|frameset|h[1-6]|head|header|hr|html|iframe|legend|li|link|main|menu|menuitem|nav|noframes|ol|optgroup|option|p|param|search|section|summary|table|tbody|td|tfoot|th|thead|title|tr|track|ul`
	rawTextTagName = `script|pre|textarea|style`
)

// htmlTag matches an inline raw HTML element at the start of the input.
var htmlTag = regexp.MustCompile(`^(?:` + openTag + `|` + closeTag + `|` + htmlComment + `|` + procInstr + `|` + declaration + `|` + cdata + `)`)

// htmlBlockOpen[i] matches the start condition of HTML block type i.
var htmlBlockOpen = [...]*regexp.Regexp{
	1: regexp.MustCompile(`(?i)^<(?:` + rawTextTagName + `)(?:\s|>|$)`),
	2: regexp.MustCompile(`^<!--`),
	3: regexp.MustCompile(`^<\?`),
	4: regexp.MustCompile(`^<![A-Za-z]`),
	5: regexp.MustCompile(`^<!\[CDATA\[`),
	6: regexp.MustCompile(`(?i)^</?(?:` + blockTagNames + `)(?:\s|/?>|$)`),
	7: regexp.MustCompile(`(?i)^(?:` + openTag + `|` + closeTag + `)\s*$`),
}

// htmlBlockClose[i] matches the end condition of HTML block type i.
// Types 6 and 7 end at a blank line instead.
var htmlBlockClose = [...]*regexp.Regexp{
	1: regexp.MustCompile(`(?i)</(?:` + rawTextTagName + `)>`),
	2: regexp.MustCompile(`-->`),
	3: regexp.MustCompile(`\?>`),
	4: regexp.MustCompile(`>`),
	5: regexp.MustCompile(`\]\]>`),
}

var (
	uriAutolink   = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9.+-]{1,31}:[^<>\x00-\x20]*)>`)
	emailAutolink = regexp.MustCompile("^<([a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>")
)
