package wire

import (
	"net/url"
	"strconv"
)

// The form-encoded query protocol nests structures with dotted indices:
//
//	Attributes.entry.1.key=K&Attributes.entry.1.value=V   (maps)
//	TopicArns.member.1=arn:...                            (lists)
//	PublishBatchRequestEntries.member.1.Id=a              (struct lists)
//
// Indices are 1-based and contiguous; decoding stops at the first gap.

// FormEntryMap decodes the map encoding under prefix.
func FormEntryMap(form url.Values, prefix string) map[string]string {
	out := map[string]string{}
	for i := 1; ; i++ {
		k := form.Get(prefix + ".entry." + strconv.Itoa(i) + ".key")
		if k == "" {
			break
		}
		out[k] = form.Get(prefix + ".entry." + strconv.Itoa(i) + ".value")
	}
	return out
}

// FormMemberList decodes the scalar list encoding under prefix, in order.
func FormMemberList(form url.Values, prefix string) []string {
	var out []string
	for i := 1; ; i++ {
		v, ok := formLookup(form, prefix+".member."+strconv.Itoa(i))
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// FormMemberFields decodes the struct list encoding under prefix: each
// element is the map of field names to values for one member.
func FormMemberFields(form url.Values, prefix string) []map[string]string {
	var out []map[string]string
	for i := 1; ; i++ {
		memberPrefix := prefix + ".member." + strconv.Itoa(i) + "."
		fields := map[string]string{}
		for key, vals := range form {
			if len(vals) == 0 {
				continue
			}
			if rest, ok := cutPrefix(key, memberPrefix); ok {
				fields[rest] = vals[0]
			}
		}
		if len(fields) == 0 {
			break
		}
		out = append(out, fields)
	}
	return out
}

func formLookup(form url.Values, key string) (string, bool) {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}
