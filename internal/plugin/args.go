package plugin

import (
	"fmt"
	"html/template"
	"strconv"
	"time"

	"git.home.luguber.info/inful/popsite/internal/content"
)

func argAt(args []any, i int) (any, bool) {
	if i >= len(args) || args[i] == nil {
		return nil, false
	}
	return args[i], true
}

func argString(args []any, i int, def string) string {
	v, ok := argAt(args, i)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case template.HTML:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func argInt(args []any, i int, def int) (int, error) {
	v, ok := argAt(args, i)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %d: %w", i+1, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("argument %d: expected a number, got %T", i+1, v)
	}
}

func argBool(args []any, i int) bool {
	v, ok := argAt(args, i)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	default:
		return false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func argTime(args []any, i int) (time.Time, error) {
	v, ok := argAt(args, i)
	if !ok {
		return time.Time{}, fmt.Errorf("argument %d: date required", i+1)
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		return *t, nil
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("argument %d: unrecognised date %q", i+1, t)
	default:
		return time.Time{}, fmt.Errorf("argument %d: expected a date, got %T", i+1, v)
	}
}

func argPost(rc *RenderContext, args []any, i int) (*content.Post, error) {
	v, ok := argAt(args, i)
	if !ok {
		if rc.Post != nil {
			return rc.Post, nil
		}
		return nil, fmt.Errorf("argument %d: post required", i+1)
	}
	p, ok := v.(*content.Post)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected a post, got %T", i+1, v)
	}
	return p, nil
}
