package acd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"agentpack/internal/services"
)

const (
	kindCharacter = "character"
	kindInfo      = "info"
	kindAnimation = "animation"
	kindFrame     = "frame"
	kindImage     = "image"
	kindBranching = "branching"
	kindState     = "state"
)

type property struct {
	key   string
	value string
	line  int
}

type block struct {
	kind     string
	name     string
	arg      string
	line     int
	endLine  int
	props    []property
	children []*block
}

func (b *block) prop(key string) (property, bool) {
	for _, p := range b.props {
		if p.key == key {
			return p, true
		}
	}
	return property{}, false
}

// ParseBytes decodes data using codePage and parses it.
func ParseBytes(data []byte, codePage string) ([]Record, error) {
	text, err := DecodeText(data, codePage)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// Parse converts description text into a record stream.
func Parse(text string) ([]Record, error) {
	root, err := parseBlocks(text)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, child := range root.children {
		emitted, err := flatten(child)
		if err != nil {
			return nil, err
		}
		records = append(records, emitted...)
	}
	return records, nil
}

func parseBlocks(text string) (*block, error) {
	root := &block{kind: "root"}
	stack := []*block{root}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		current := stack[len(stack)-1]

		keyword, rest := splitKeyword(line)
		if !strings.Contains(keyword, "=") {
			lowered := strings.ToLower(keyword)
			switch {
			case strings.HasPrefix(lowered, "define") && len(lowered) > len("define"):
				child := &block{
					kind: lowered[len("define"):],
					name: keyword[len("define"):],
					arg:  unquote(rest),
					line: lineNo,
				}
				current.children = append(current.children, child)
				stack = append(stack, child)
				continue
			case strings.HasPrefix(lowered, "end") && len(lowered) > len("end") && rest == "":
				kind := lowered[len("end"):]
				if len(stack) == 1 {
					return nil, malformed(lineNo, "%s without matching Define%s", keyword, keyword[len("end"):])
				}
				if kind != current.kind {
					return nil, malformed(lineNo, "%s closes Define%s opened on line %d", keyword, current.name, current.line)
				}
				current.endLine = lineNo
				stack = stack[:len(stack)-1]
				continue
			}
		}
		if !strings.Contains(line, "=") {
			if known(stack) {
				return nil, malformed(lineNo, "expected Key = Value, got %q", line)
			}
			continue
		}

		key, value, _ := strings.Cut(line, "=")
		current.props = append(current.props, property{
			key:   strings.ToLower(strings.TrimSpace(key)),
			value: strings.TrimSpace(value),
			line:  lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read description: %w", services.ErrMalformedDescription, err)
	}
	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, malformed(open.line, "Define%s is never closed", open.name)
	}
	return root, nil
}

// known reports whether every open block is one the converter understands.
func known(stack []*block) bool {
	for _, b := range stack[1:] {
		switch b.kind {
		case kindCharacter, kindAnimation, kindFrame, kindImage, kindBranching, kindState:
		default:
			return false
		}
	}
	return true
}

func flatten(b *block) ([]Record, error) {
	switch b.kind {
	case kindCharacter:
		rec, err := characterRecord(b)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	case kindAnimation:
		return animationRecords(b)
	case kindFrame:
		return frameRecords(b)
	case kindBranching:
		return branchRecords(b)
	case kindState:
		rec := StateRecord{Name: b.arg, Line: b.line}
		for _, p := range b.props {
			if p.key == "animation" {
				rec.Animations = append(rec.Animations, unquote(p.value))
			}
		}
		return []Record{rec}, nil
	default:
		return nil, nil
	}
}

func characterRecord(b *block) (CharacterRecord, error) {
	rec := CharacterRecord{Name: b.arg, Line: b.line}
	var err error
	if rec.Width, err = intProp(b, "width", 0); err != nil {
		return rec, err
	}
	if rec.Height, err = intProp(b, "height", 0); err != nil {
		return rec, err
	}
	if rec.DefaultDuration, err = intProp(b, "defaultframeduration", 0); err != nil {
		return rec, err
	}
	if rec.Name == "" {
		for _, child := range b.children {
			if child.kind != kindInfo {
				continue
			}
			if p, ok := child.prop("name"); ok {
				rec.Name = unquote(p.value)
				break
			}
		}
	}
	return rec, nil
}

func animationRecords(b *block) ([]Record, error) {
	header := AnimationRecord{Name: b.arg, Line: b.line}
	var err error
	if header.TransitionType, err = intProp(b, "transitiontype", 0); err != nil {
		return nil, err
	}
	if p, ok := b.prop("returnanimation"); ok {
		header.ReturnAnimation = unquote(p.value)
	} else if p, ok := b.prop("return"); ok {
		header.ReturnAnimation = unquote(p.value)
	}

	records := []Record{header}
	for _, child := range b.children {
		emitted, err := flatten(child)
		if err != nil {
			return nil, err
		}
		records = append(records, emitted...)
	}
	return append(records, AnimationEndRecord{Name: b.arg, Line: b.endLine}), nil
}

func frameRecords(b *block) ([]Record, error) {
	frame := FrameRecord{Line: b.line}
	if p, ok := b.prop("duration"); ok {
		value, err := parseInt(p)
		if err != nil {
			return nil, err
		}
		frame.Duration = &value
	}
	var err error
	if frame.ExitBranch, err = intProp(b, "exitbranch", 0); err != nil {
		return nil, err
	}
	for _, p := range b.props {
		switch p.key {
		case "soundeffect":
			if sound := unquote(p.value); sound != "" {
				frame.Sounds = append(frame.Sounds, sound)
			}
		case "filename":
			if name := unquote(p.value); name != "" {
				frame.Images = append(frame.Images, ImageRef{Filename: name, Line: p.line})
			}
		}
	}

	var branches []Record
	for _, child := range b.children {
		switch child.kind {
		case kindImage:
			ref, err := imageRef(child)
			if err != nil {
				return nil, err
			}
			if ref.Filename != "" {
				frame.Images = append(frame.Images, ref)
			}
		case kindBranching:
			emitted, err := branchRecords(child)
			if err != nil {
				return nil, err
			}
			branches = append(branches, emitted...)
		}
	}
	return append([]Record{frame}, branches...), nil
}

func imageRef(b *block) (ImageRef, error) {
	ref := ImageRef{Line: b.line}
	if p, ok := b.prop("filename"); ok {
		ref.Filename = unquote(p.value)
		ref.Line = p.line
	}
	var err error
	if ref.OffsetX, err = intProp(b, "offsetx", 0); err != nil {
		return ref, err
	}
	if ref.OffsetY, err = intProp(b, "offsety", 0); err != nil {
		return ref, err
	}
	return ref, nil
}

// branchRecords pairs each BranchTo with the Probability that follows it.
func branchRecords(b *block) ([]Record, error) {
	var branches []BranchRecord
	for _, p := range b.props {
		switch p.key {
		case "branchto":
			target, err := parseInt(p)
			if err != nil {
				return nil, err
			}
			branches = append(branches, BranchRecord{Target: target, Line: p.line})
		case "probability":
			value, err := parseInt(p)
			if err != nil {
				return nil, err
			}
			if len(branches) == 0 {
				return nil, malformed(p.line, "Probability before BranchTo")
			}
			branches[len(branches)-1].Probability = value
		}
	}
	records := make([]Record, 0, len(branches))
	for _, br := range branches {
		records = append(records, br)
	}
	return records, nil
}

func intProp(b *block, key string, fallback int) (int, error) {
	p, ok := b.prop(key)
	if !ok {
		return fallback, nil
	}
	return parseInt(p)
}

func parseInt(p property) (int, error) {
	value, err := strconv.Atoi(unquote(p.value))
	if err != nil {
		return 0, malformed(p.line, "%s must be an integer, got %q", p.key, p.value)
	}
	return value, nil
}

func splitKeyword(line string) (string, string) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}

func unquote(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", services.ErrMalformedDescription, line, fmt.Sprintf(format, args...))
}
