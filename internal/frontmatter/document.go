package frontmatter

import (
	"strings"
)

// Divider is the 3-character line that opens and closes a header block.
const Divider = "---"

// Document is the result of splitting a source file into its structured
// header and free-form body.
type Document struct {
	Header Value // always KindMapping
	Body   string
}

// Decode splits source into header and body. A missing or unterminated
// header yields an empty mapping and the whole text as body; malformed
// header lines are skipped. Decode never fails, so body content is never
// lost to a corrupt header.
func Decode(source string) Document {
	text := strings.ReplaceAll(source, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Divider {
		return Document{Header: Mapping(), Body: normalizeBody(text)}
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Divider {
			closing = i
			break
		}
	}
	if closing == -1 {
		return Document{Header: Mapping(), Body: normalizeBody(text)}
	}

	header := parseHeader(lines[1:closing])
	body := normalizeBody(strings.Join(lines[closing+1:], "\n"))
	return Document{Header: header, Body: body}
}

// Encode serializes header between divider lines, a blank line, and the body
// trimmed to exactly one trailing newline.
func Encode(header Value, body string) string {
	var sb strings.Builder
	sb.WriteString(Divider + "\n")
	writeMapping(&sb, header, 0)
	sb.WriteString(Divider + "\n")
	if b := normalizeBody(body); b != "" {
		sb.WriteString("\n")
		sb.WriteString(b)
	}
	sb.WriteString("\n")
	return sb.String()
}

// normalizeBody drops leading blank lines and trailing whitespace. Both
// decode and encode pass through it, which is what makes the round trip
// closed over the codec's own output.
func normalizeBody(b string) string {
	return strings.TrimRight(strings.TrimLeft(b, "\n"), " \t\n")
}

// frame is one level of the indentation context stack. The container under
// construction is owned by the frame and only attached to its parent when the
// frame pops, so no pointer into a growing slice is ever held.
type frame struct {
	indent      int
	value       Value  // KindMapping or KindSequence
	parentKey   string // attach target when the parent is a mapping
	parentIsSeq bool   // append to the parent sequence instead
}

// parseHeader runs the indent-tracked state machine over the header lines.
func parseHeader(lines []string) Value {
	stack := []*frame{{indent: 0, value: Mapping()}}

	pop := func() {
		child := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		if child.parentIsSeq {
			parent.value.Append(child.value)
		} else {
			parent.value.Set(child.parentKey, child.value)
		}
	}

	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent := countIndent(raw)
		text := strings.TrimSpace(raw)

		for len(stack) > 1 && indent < stack[len(stack)-1].indent {
			pop()
		}
		top := stack[len(stack)-1]

		if text == "-" || strings.HasPrefix(text, "- ") {
			if top.value.Kind != KindSequence {
				continue // list marker outside a sequence: skip
			}
			if text == "-" {
				top.value.Append(Null())
				continue
			}
			rest := strings.TrimSpace(text[2:])
			key, val, ok := splitKeyValue(rest)
			if !ok {
				top.value.Append(ParseScalar(rest))
				continue
			}
			// Mapping item: first key rides on the marker line, the rest of
			// the item's keys arrive at the child indent.
			item := &frame{indent: indent + 2, value: Mapping(), parentIsSeq: true}
			stack = append(stack, item)
			handleKey(&stack, item, key, val, indent+2, lines, i)
			continue
		}

		key, val, ok := splitKeyValue(text)
		if !ok || top.value.Kind != KindMapping {
			continue // unsplittable or misplaced line: skip
		}
		handleKey(&stack, top, key, val, indent, lines, i)
	}

	for len(stack) > 1 {
		pop()
	}
	return stack[0].value
}

// handleKey stores key in the frame's mapping. An empty value opens a nested
// container whose kind is decided by looking ahead to the next non-blank
// line: a deeper list marker opens a sequence, any other deeper line a
// mapping, and no deeper line at all means the value is null.
func handleKey(stack *[]*frame, f *frame, key, val string, keyIndent int, lines []string, i int) {
	if val != "" {
		f.value.Set(key, ParseScalar(val))
		return
	}
	nextIndent, nextText, found := nextNonBlank(lines, i+1)
	if !found || nextIndent <= keyIndent {
		f.value.Set(key, Null())
		return
	}
	child := &frame{indent: nextIndent, parentKey: key}
	if nextText == "-" || strings.HasPrefix(nextText, "- ") {
		child.value = SequenceOf()
	} else {
		child.value = Mapping()
	}
	*stack = append(*stack, child)
}

func nextNonBlank(lines []string, from int) (indent int, text string, found bool) {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		return countIndent(lines[j]), strings.TrimSpace(lines[j]), true
	}
	return 0, "", false
}

func countIndent(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		n++
	}
	return n
}

// splitKeyValue splits "key: value" or "key:" on the first colon that is
// followed by a space or ends the line. Quoted and bracketed tokens are never
// treated as keys, so "12:30" or "- '09:00'" stay scalars.
func splitKeyValue(text string) (key, val string, ok bool) {
	if text == "" {
		return "", "", false
	}
	switch text[0] {
	case '"', '\'', '[', '{':
		return "", "", false
	}
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}
	if idx != len(text)-1 && text[idx+1] != ' ' {
		return "", "", false
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:]), true
}

func writeMapping(sb *strings.Builder, m Value, indent int) {
	for _, f := range m.Fields {
		writeField(sb, f, indent)
	}
}

func writeField(sb *strings.Builder, f Field, indent int) {
	pad := strings.Repeat(" ", indent)
	switch {
	case f.Value.Kind == KindMapping && len(f.Value.Fields) > 0:
		sb.WriteString(pad + f.Key + ":\n")
		writeMapping(sb, f.Value, indent+2)
	case f.Value.Kind == KindSequence && len(f.Value.Items) > 0:
		sb.WriteString(pad + f.Key + ":\n")
		writeSequence(sb, f.Value, indent+2)
	default:
		sb.WriteString(pad + f.Key + ": " + StringifyScalar(f.Value) + "\n")
	}
}

func writeSequence(sb *strings.Builder, s Value, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, item := range s.Items {
		if item.Kind == KindMapping && len(item.Fields) > 0 {
			first := item.Fields[0]
			switch {
			case first.Value.Kind == KindMapping && len(first.Value.Fields) > 0:
				sb.WriteString(pad + "- " + first.Key + ":\n")
				writeMapping(sb, first.Value, indent+4)
			case first.Value.Kind == KindSequence && len(first.Value.Items) > 0:
				sb.WriteString(pad + "- " + first.Key + ":\n")
				writeSequence(sb, first.Value, indent+4)
			default:
				sb.WriteString(pad + "- " + first.Key + ": " + StringifyScalar(first.Value) + "\n")
			}
			for _, f := range item.Fields[1:] {
				writeField(sb, f, indent+2)
			}
			continue
		}
		sb.WriteString(pad + "- " + StringifyScalar(item) + "\n")
	}
}
