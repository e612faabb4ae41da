// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  xml.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// READ XML INPUT INTO TRIMMED BLOCKS

// XMLBlock is a string that is normally trimmed back to end with a right angle
// bracket. The excluded characters are saved and prepended to the next block.
// Presenting mostly complete object tags keeps the tokenizer carry small.
type XMLBlock string

// blockReader pulls one block at a time from the underlying reader. It is the
// synchronous counterpart of a streaming goroutine, so that feeding the parser
// advances only when the consumer asks for another record.
type blockReader struct {
	in        io.Reader
	buffer    []byte
	remainder string
	position  int64
	isClosed  bool
	failure   error
}

func newBlockReader(in io.Reader, size int) *blockReader {

	if size < 1 {
		size = DefaultBlockSize
	}

	return &blockReader{in: in, buffer: make([]byte, size)}
}

// nextBlock reads one buffer, trims back to the right-most > character, and
// retains the remainder for prepending in the next call. A buffer with no >
// character is accumulated until the remainder reaches the buffer size, and
// is then returned untrimmed so that long content strings do not stall.
// Returns io.EOF once all data, including the final remainder, has been sent.
// A read error is returned after the data that arrived with it.
func (r *blockReader) nextBlock() (XMLBlock, error) {

	for {
		if r.isClosed {
			if r.remainder != "" {
				// final remainder is not terminated by a right angle bracket
				str := r.remainder
				r.remainder = ""
				return XMLBlock(str), nil
			}
			if r.failure != nil {
				return "", r.failure
			}
			return "", io.EOF
		}

		n, err := r.in.Read(r.buffer)
		if n < 0 {
			// reality check - non-conforming implementations of io.Reader may return -1
			n = 0
		}

		if err != nil {
			// end of file, or a real error to report once the data read with it is sent
			r.isClosed = true
			if err != io.EOF {
				r.failure = err
			}
		}

		if n > 0 {
			r.position += int64(n)

			text := r.remainder + string(r.buffer[:n])
			r.remainder = ""

			// It is safe to back up on a UTF-8 byte sequence when looking for a 7-bit ASCII character.
			pos := strings.LastIndexByte(text, '>')
			if pos > -1 {
				pos++
				r.remainder = text[pos:]
				return XMLBlock(text[:pos]), nil
			}

			if len(text) >= len(r.buffer) {
				// no > found, send long content and let the tokenizer carry any partial markup
				return XMLBlock(text), nil
			}

			r.remainder = text
		}
	}
}

// PARSE XML BLOCKS INTO TOKENS

// XML token type
const (
	NOTAG = iota
	STARTTAG
	SELFTAG
	STOPTAG
	CONTENTTAG
	CDATATAG
	COMMENTTAG
	DOCTYPETAG
	PROCESSTAG
)

// XMLToken is the unit of XML parsing. Name holds the element name for tags,
// and the decoded text for CONTENTTAG and CDATATAG. Attr holds the raw
// attribute string of a start or self-closing tag. Offset is the position of
// the token in the decoded stream.
type XMLToken struct {
	Tag    int
	Name   string
	Attr   string
	Offset int64
}

// tokenizer converts a sequence of blocks into tokens. Markup that is not
// complete at the end of a block is carried over and prepended to the next
// one. Character data may be split at block boundaries, but never inside an
// entity reference.
type tokenizer struct {
	carry  string
	offset int64
}

// findTagEnd returns the index of the right angle bracket that closes the tag
// starting at text[0], skipping over quoted attribute values
func findTagEnd(text string) int {

	quote := byte(0)
	for i := 1; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '>':
			return i
		}
	}

	return -1
}

// findDoctypeEnd skips an internal subset in square brackets
func findDoctypeEnd(text string) int {

	depth := 0
	quote := byte(0)
	for i := 2; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '[':
			depth++
		case ch == ']':
			depth--
		case ch == '>' && depth <= 0:
			return i
		}
	}

	return -1
}

// splitContent finds a safe point to split character data at the end of a
// block, backing up to before a trailing partial entity reference or a
// carriage return that may be the first half of a line break
func splitContent(text string) int {

	stop := len(text)

	amp := strings.LastIndexByte(text, '&')
	if amp >= 0 && strings.IndexByte(text[amp:], ';') < 0 {
		stop = amp
	}
	if stop > 0 && text[stop-1] == '\r' {
		stop--
	}

	return stop
}

// normalizeLines folds CR LF and lone CR line breaks to LF
func normalizeLines(str string) string {

	if strings.IndexByte(str, '\r') < 0 {
		return str
	}

	return strings.ReplaceAll(strings.ReplaceAll(str, "\r\n", "\n"), "\r", "\n")
}

// isXMLChar reports whether a character reference names a legal XML character
func isXMLChar(ch rune) bool {

	switch {
	case ch == 0x9 || ch == 0xA || ch == 0xD:
		return true
	case ch >= 0x20 && ch <= 0xD7FF:
		return true
	case ch >= 0xE000 && ch <= 0xFFFD:
		return true
	case ch >= 0x10000 && ch <= 0x10FFFF:
		return true
	}

	return false
}

// decodeEntities replaces the five predefined XML entities and decimal or
// hexadecimal character references. Any other reference is a SyntaxError
// whose offset is relative to the start of str.
func decodeEntities(str string) (string, error) {

	amp := strings.IndexByte(str, '&')
	if amp < 0 {
		return str, nil
	}

	buf := make([]byte, 0, len(str))
	idx := 0

	for amp >= 0 {
		amp += idx
		buf = append(buf, str[idx:amp]...)

		semi := strings.IndexByte(str[amp:], ';')
		if semi < 0 {
			return "", &SyntaxError{Offset: int64(amp), Msg: "unterminated entity reference"}
		}
		ref := str[amp+1 : amp+semi]

		switch ref {
		case "lt":
			buf = append(buf, '<')
		case "gt":
			buf = append(buf, '>')
		case "amp":
			buf = append(buf, '&')
		case "quot":
			buf = append(buf, '"')
		case "apos":
			buf = append(buf, '\'')
		default:
			if len(ref) < 2 || ref[0] != '#' {
				return "", &SyntaxError{Offset: int64(amp), Msg: "undefined entity '&" + ref + ";'"}
			}
			digits, base := ref[1:], 10
			if digits[0] == 'x' {
				digits, base = digits[1:], 16
			}
			if digits == "" || digits[0] == '+' || digits[0] == '-' {
				return "", &SyntaxError{Offset: int64(amp), Msg: "invalid character reference '&" + ref + ";'"}
			}
			num, err := strconv.ParseInt(digits, base, 32)
			if err != nil || !isXMLChar(rune(num)) {
				return "", &SyntaxError{Offset: int64(amp), Msg: "invalid character reference '&" + ref + ";'"}
			}
			buf = utf8.AppendRune(buf, rune(num))
		}

		idx = amp + semi + 1
		amp = strings.IndexByte(str[idx:], '&')
	}

	buf = append(buf, str[idx:]...)

	return string(buf), nil
}

// feed tokenizes one block and sends each token to the callback. When final
// is true, no more blocks will follow and any carried markup is an error.
func (t *tokenizer) feed(block XMLBlock, final bool, proc func(XMLToken) error) error {

	text := t.carry + string(block)
	base := t.offset - int64(len(t.carry))
	t.carry = ""

	idx := 0
	txtlen := len(text)

	// hold saves unfinished markup for the next block
	hold := func(pos int, what string) error {
		if final {
			return &SyntaxError{Offset: base + int64(pos), Msg: "unterminated " + what}
		}
		t.carry = text[pos:]
		return nil
	}

	for idx < txtlen {

		ch := text[idx]

		if ch != '<' {

			// at start of contents
			start := idx
			stop := strings.IndexByte(text[idx:], '<')
			if stop < 0 {
				stop = txtlen
				if !final {
					stop = start + splitContent(text[start:])
				}
			} else {
				stop += idx
			}

			if stop == start {
				// nothing but a partial entity reference or line break remains
				t.carry = text[start:]
				break
			}

			str, err := decodeEntities(normalizeLines(text[start:stop]))
			if err != nil {
				var syn *SyntaxError
				if errors.As(err, &syn) {
					syn.Offset += base + int64(start)
				}
				return err
			}
			if err := proc(XMLToken{Tag: CONTENTTAG, Name: str, Offset: base + int64(start)}); err != nil {
				return err
			}

			idx = stop
			continue
		}

		rest := text[idx:]

		if len(rest) < 2 {
			if err := hold(idx, "tag"); err != nil {
				return err
			}
			break
		}

		switch rest[1] {

		case '?':
			// skip ?xml and ?processing instructions
			found := strings.Index(rest, "?>")
			if found < 0 {
				if err := hold(idx, "processing instruction"); err != nil {
					return err
				}
				idx = txtlen
				continue
			}
			if err := proc(XMLToken{Tag: PROCESSTAG, Name: strings.TrimSpace(rest[2:found]), Offset: base + int64(idx)}); err != nil {
				return err
			}
			idx += found + 2

		case '!':
			if strings.HasPrefix(rest, "<!--") {
				found := strings.Index(rest[4:], "-->")
				if found < 0 {
					if err := hold(idx, "comment"); err != nil {
						return err
					}
					idx = txtlen
					continue
				}
				if err := proc(XMLToken{Tag: COMMENTTAG, Name: rest[4 : 4+found], Offset: base + int64(idx)}); err != nil {
					return err
				}
				idx += 4 + found + 3
			} else if strings.HasPrefix(rest, "<![CDATA[") {
				found := strings.Index(rest[9:], "]]>")
				if found < 0 {
					if err := hold(idx, "CDATA section"); err != nil {
						return err
					}
					idx = txtlen
					continue
				}
				if err := proc(XMLToken{Tag: CDATATAG, Name: normalizeLines(rest[9 : 9+found]), Offset: base + int64(idx)}); err != nil {
					return err
				}
				idx += 9 + found + 3
			} else if len(rest) < 9 && !final && strings.HasPrefix("<![CDATA[", rest) {
				// too short to tell a CDATA section from a declaration
				t.carry = rest
				idx = txtlen
			} else {
				found := findDoctypeEnd(rest)
				if found < 0 {
					if err := hold(idx, "declaration"); err != nil {
						return err
					}
					idx = txtlen
					continue
				}
				if err := proc(XMLToken{Tag: DOCTYPETAG, Name: rest[2:found], Offset: base + int64(idx)}); err != nil {
					return err
				}
				idx += found + 1
			}

		case '/':
			// at start of end tag
			found := strings.IndexByte(rest, '>')
			if found < 0 {
				if err := hold(idx, "end tag"); err != nil {
					return err
				}
				idx = txtlen
				continue
			}
			name := strings.TrimSpace(rest[2:found])
			if name == "" || !inFirst[name[0]] {
				return &SyntaxError{Offset: base + int64(idx), Msg: "malformed end tag '" + rest[:found+1] + "'"}
			}
			if err := proc(XMLToken{Tag: STOPTAG, Name: name, Offset: base + int64(idx)}); err != nil {
				return err
			}
			idx += found + 1

		default:
			// at start of element
			if !inFirst[rest[1]] {
				return &SyntaxError{Offset: base + int64(idx), Msg: "unexpected punctuation '" + rest[1:2] + "' in XML element"}
			}
			found := findTagEnd(rest)
			if found < 0 {
				if err := hold(idx, "start tag"); err != nil {
					return err
				}
				idx = txtlen
				continue
			}

			body := rest[1:found]
			tag := STARTTAG
			if strings.HasSuffix(body, "/") {
				tag = SELFTAG
				body = body[:len(body)-1]
			}

			// read element name
			pos := 0
			for pos < len(body) && inElement[body[pos]] {
				pos++
			}
			name := body[:pos]
			atr := strings.TrimSpace(body[pos:])
			if pos < len(body) && !inBlank[body[pos]] {
				return &SyntaxError{Offset: base + int64(idx), Msg: "unexpected character in element name '" + body + "'"}
			}

			if err := proc(XMLToken{Tag: tag, Name: name, Attr: atr, Offset: base + int64(idx)}); err != nil {
				return err
			}
			idx += found + 1
		}
	}

	t.offset = base + int64(txtlen)

	return nil
}

// ATTRIBUTES

// Attr is a single decoded attribute
type Attr struct {
	Name  string
	Value string
}

// Attrs preserves document order of attributes
type Attrs []Attr

// Get returns the value of the named attribute
func (a Attrs) Get(name string) (string, bool) {

	for _, atr := range a {
		if atr.Name == name {
			return atr.Value, true
		}
	}

	return "", false
}

// ParseAttributes produces name/value pairs from a raw attribute string, only
// run on request
func ParseAttributes(attrb string) (Attrs, error) {

	if attrb == "" {
		return nil, nil
	}

	var arry Attrs

	idx := 0
	attlen := len(attrb)

	for idx < attlen {

		// skip past leading blanks
		for idx < attlen && inBlank[attrb[idx]] {
			idx++
		}
		if idx >= attlen {
			break
		}

		start := idx
		for idx < attlen && attrb[idx] != '=' && !inBlank[attrb[idx]] {
			idx++
		}
		name := attrb[start:idx]

		// skip past unexpected blanks around the equal sign
		for idx < attlen && inBlank[attrb[idx]] {
			idx++
		}
		if name == "" || idx >= attlen || attrb[idx] != '=' {
			return nil, &SyntaxError{Msg: "attribute '" + name + "' missing value in '" + attrb + "'"}
		}
		idx++
		for idx < attlen && inBlank[attrb[idx]] {
			idx++
		}
		if idx >= attlen || (attrb[idx] != '"' && attrb[idx] != '\'') {
			return nil, &SyntaxError{Msg: "attribute '" + name + "' missing quote in '" + attrb + "'"}
		}

		quote := attrb[idx]
		idx++
		start = idx
		for idx < attlen && attrb[idx] != quote {
			idx++
		}
		if idx >= attlen {
			return nil, &SyntaxError{Msg: "attribute '" + name + "' missing closing quote in '" + attrb + "'"}
		}
		value, err := decodeEntities(attrb[start:idx])
		if err != nil {
			var syn *SyntaxError
			if errors.As(err, &syn) {
				syn.Msg = "attribute '" + name + "' has " + syn.Msg
				syn.Offset = 0
			}
			return nil, err
		}
		// skip past trailing quote
		idx++

		arry = append(arry, Attr{Name: name, Value: value})
	}

	return arry, nil
}
