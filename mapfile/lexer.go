// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type itemType int

const (
	itemError  itemType = iota
	itemEOF
	itemString // quoted string includes quotes
	itemChar   // '{','}','(',')','[',']'
	itemWord   // numbers and texture names
)

const eof = -1

type item struct {
	typ  itemType
	val  string
	line int
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

type stateFn func(*lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int
	line  int
	items chan item
	state stateFn
}

func lex(input string) *lexer {
	l := &lexer{
		input: input,
		line:  1,
		items: make(chan item, 2),
		state: lexAction,
	}
	return l
}

func (l *lexer) nextItem() item {
	for {
		select {
		case item := <-l.items:
			return item
		default:
			if l.state == nil {
				return item{itemEOF, "", l.line}
			}
			l.state = l.state(l)
		}
	}
}

func (l *lexer) emit(t itemType) {
	l.items <- item{t, l.input[l.start:l.pos], l.line}
	l.ignore()
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	return r
}

// ignore drops the pending input, keeping the line count.
func (l *lexer) ignore() {
	l.line += strings.Count(l.input[l.start:l.pos], "\n")
	l.start = l.pos
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{
		itemError,
		fmt.Sprintf(format, args...),
		l.line,
	}
	return nil
}

func lexAction(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		l.emit(itemEOF)
		return nil
	case isSpace(r):
		return lexSpace
	case r == '"':
		return lexQuote
	case r == '/' && l.peek() == '/':
		return lexComment
	case r == '(' || r == ')' || r == '[' || r == ']' || r == '}':
		l.emit(itemChar)
		return lexAction
	case r == '{':
		// "{fence" is a texture name, not a block
		if n := l.peek(); isWordRune(n) && n != '{' && n != '/' {
			return lexWord
		}
		l.emit(itemChar)
		return lexAction
	default:
		return lexWord
	}
}

func lexWord(l *lexer) stateFn {
	for {
		r := l.next()
		if !isWordRune(r) || (r == '/' && l.peek() == '/') {
			if r != eof {
				l.backup()
			}
			break
		}
	}
	l.emit(itemWord)
	return lexAction
}

func lexSpace(l *lexer) stateFn {
	for isSpace(l.peek()) {
		l.next()
	}
	l.ignore()
	return lexAction
}

// lexComment drops the rest of the line.
func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof {
			break
		}
		if r == '\n' {
			l.backup()
			break
		}
	}
	l.ignore()
	return lexAction
}

func lexQuote(l *lexer) stateFn {
Loop:
	for {
		switch l.next() {
		case '"':
			break Loop
		case eof, '\n':
			return l.errorf("unterminated string")
		}
	}
	l.emit(itemString)
	return lexAction
}

func isWordRune(r rune) bool {
	switch r {
	case eof, '"', '(', ')', '[', ']', '}':
		return false
	}
	return r > ' '
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}
