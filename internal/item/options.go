package item

import (
	"fmt"
	"strconv"

	"itemimport/internal/mapping"
)

// options prepares the option list stored under key: every option gets
// value.asset (from value.text, else value.image), options repeating an
// earlier asset are dropped, and the survivors are shuffled when asked.
// A missing list becomes an empty one.
func (p *Processor) options(doc *mapping.Document, key string, shuffle bool) []any {
	list, _ := valueOf(doc, key).([]any)
	out := make([]any, 0, len(list))

	type assetKey struct {
		ok    bool
		asset string
	}
	seen := make(map[assetKey]struct{}, len(list))

	for _, o := range list {
		asset, ok := setAsset(o)
		k := assetKey{ok: ok}
		if ok {
			k.asset = fmtValue(asset)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}

	if shuffle && len(out) > 1 {
		p.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// setAsset fills value.asset on one option and returns it. Options without a
// value object, or with neither text nor image, report false and all share
// the same dedup slot.
func setAsset(o any) (any, bool) {
	opt, ok := o.(*mapping.Document)
	if !ok {
		return nil, false
	}
	val, ok := opt.Doc("value")
	if !ok {
		return nil, false
	}
	asset, ok := val.Get("text")
	if !ok {
		asset, ok = val.Get("image")
	}
	if !ok {
		return nil, false
	}
	val.Set("asset", asset)
	return asset, true
}

func fmtValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}
