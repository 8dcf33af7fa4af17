package dynamodb

import (
	"strings"
)

// exprContext carries the substitution maps of one request.
type exprContext struct {
	names  map[string]string
	values map[string]AttributeValue
}

// resolveName maps a "#placeholder" to its attribute name; bare names pass
// through.
func (c *exprContext) resolveName(token string) (string, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, "#") {
		return token, nil
	}
	name, ok := c.names[token]
	if !ok {
		return "", errValidation("An expression attribute name used in the document path is not defined; attribute name: %s", token)
	}
	return name, nil
}

func (c *exprContext) value(token string) (AttributeValue, error) {
	token = strings.TrimSpace(token)
	v, ok := c.values[token]
	if !ok {
		return nil, errValidation("An expression attribute value used in expression is not defined; attribute value: %s", token)
	}
	return v, nil
}

// operand resolves a value reference (":v") or a document path against the
// item. The second result reports whether the path exists.
func (c *exprContext) operand(token string, item Item) (AttributeValue, bool, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, ":") {
		v, err := c.value(token)
		return v, err == nil, err
	}
	name, err := c.resolveName(token)
	if err != nil {
		return nil, false, err
	}
	v, ok := item[name]
	return v, ok, nil
}

// splitTopLevel splits s on a case-insensitive separator word occurring at
// parenthesis depth zero. The separator must be space-delimited in s.
func splitTopLevel(s, word string) []string {
	sep := " " + strings.ToUpper(word) + " "
	upper := strings.ToUpper(s)
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i+len(sep) <= len(s) && upper[i:i+len(sep)] == sep {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// mergeBetween repairs BETWEEN clauses torn apart by an AND split: a clause
// containing a dangling BETWEEN absorbs the following clause.
func mergeBetween(clauses []string) []string {
	var out []string
	for i := 0; i < len(clauses); i++ {
		clause := clauses[i]
		if strings.Contains(strings.ToUpper(clause), " BETWEEN ") && i+1 < len(clauses) {
			clause = clause + " AND " + clauses[i+1]
			i++
		}
		out = append(out, clause)
	}
	return out
}

// splitArgs splits a comma-separated list at parenthesis depth zero.
func splitArgs(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// callArgs decodes "fn ( a, b )" when fn matches case-insensitively,
// returning the split argument list.
func callArgs(expr, fn string) ([]string, bool) {
	trimmed := strings.TrimSpace(expr)
	if len(trimmed) < len(fn)+2 || !strings.EqualFold(trimmed[:len(fn)], fn) {
		return nil, false
	}
	rest := strings.TrimSpace(trimmed[len(fn):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, false
	}
	return splitArgs(rest[1 : len(rest)-1]), true
}

// keyCondition is one parsed KeyConditionExpression clause.
type keyCondition struct {
	attr string
	op   string // "=", "<", "<=", ">", ">=", "begins_with", "between"
	v1   AttributeValue
	v2   AttributeValue
}

func parseKeyConditions(expr string, ctx *exprContext) ([]keyCondition, error) {
	clauses := mergeBetween(splitTopLevel(expr, "AND"))
	out := make([]keyCondition, 0, len(clauses))
	for _, clause := range clauses {
		kc, err := parseKeyClause(clause, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, nil
}

func parseKeyClause(clause string, ctx *exprContext) (keyCondition, error) {
	if args, ok := callArgs(clause, "begins_with"); ok {
		if len(args) != 2 {
			return keyCondition{}, errValidation("Invalid KeyConditionExpression: begins_with takes two arguments")
		}
		attr, err := ctx.resolveName(args[0])
		if err != nil {
			return keyCondition{}, err
		}
		v, err := ctx.value(args[1])
		if err != nil {
			return keyCondition{}, err
		}
		return keyCondition{attr: attr, op: "begins_with", v1: v}, nil
	}

	upper := strings.ToUpper(clause)
	if idx := strings.Index(upper, " BETWEEN "); idx >= 0 {
		attr, err := ctx.resolveName(clause[:idx])
		if err != nil {
			return keyCondition{}, err
		}
		bounds := clause[idx+len(" BETWEEN "):]
		boundsUpper := strings.ToUpper(bounds)
		andIdx := strings.Index(boundsUpper, " AND ")
		if andIdx < 0 {
			return keyCondition{}, errValidation("Invalid KeyConditionExpression: BETWEEN requires two bounds")
		}
		lo, err := ctx.value(bounds[:andIdx])
		if err != nil {
			return keyCondition{}, err
		}
		hi, err := ctx.value(bounds[andIdx+len(" AND "):])
		if err != nil {
			return keyCondition{}, err
		}
		return keyCondition{attr: attr, op: "between", v1: lo, v2: hi}, nil
	}

	for _, op := range []string{"<=", ">=", "=", "<", ">"} {
		idx := strings.Index(clause, op)
		if idx < 0 {
			continue
		}
		attr, err := ctx.resolveName(clause[:idx])
		if err != nil {
			return keyCondition{}, err
		}
		v, err := ctx.value(clause[idx+len(op):])
		if err != nil {
			return keyCondition{}, err
		}
		return keyCondition{attr: attr, op: op, v1: v}, nil
	}
	return keyCondition{}, errValidation("Invalid KeyConditionExpression: %s", clause)
}

func (kc keyCondition) matches(item Item) bool {
	v, ok := item[kc.attr]
	if !ok {
		return false
	}
	switch kc.op {
	case "=":
		return avEqual(v, kc.v1)
	case "<":
		return compareAV(v, kc.v1) < 0
	case "<=":
		return compareAV(v, kc.v1) <= 0
	case ">":
		return compareAV(v, kc.v1) > 0
	case ">=":
		return compareAV(v, kc.v1) >= 0
	case "begins_with":
		vs, _ := scalarString(v)
		ps, _ := scalarString(kc.v1)
		return strings.HasPrefix(vs, ps)
	case "between":
		return compareAV(v, kc.v1) >= 0 && compareAV(v, kc.v2) <= 0
	}
	return false
}

// evalCondition evaluates a filter or condition expression against an item.
// Precedence: OR is weakest, then AND, then NOT, then parentheses and
// primitives.
func evalCondition(expr string, item Item, ctx *exprContext) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}

	if ors := splitTopLevel(expr, "OR"); len(ors) > 1 {
		for _, clause := range ors {
			ok, err := evalCondition(clause, item, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	if ands := mergeBetween(splitTopLevel(expr, "AND")); len(ands) > 1 {
		for _, clause := range ands {
			ok, err := evalCondition(clause, item, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	if rest, ok := cutKeywordPrefix(expr, "NOT"); ok {
		inner, err := evalCondition(rest, item, ctx)
		return !inner, err
	}

	if inner, ok := stripOuterParens(expr); ok {
		return evalCondition(inner, item, ctx)
	}

	return evalPrimitive(expr, item, ctx)
}

func cutKeywordPrefix(expr, word string) (string, bool) {
	if len(expr) > len(word)+1 &&
		strings.EqualFold(expr[:len(word)], word) &&
		(expr[len(word)] == ' ' || expr[len(word)] == '(') {
		return strings.TrimSpace(expr[len(word):]), true
	}
	return "", false
}

// stripOuterParens removes one balanced outer parenthesis pair.
func stripOuterParens(expr string) (string, bool) {
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return "", false
			}
		}
	}
	return strings.TrimSpace(expr[1 : len(expr)-1]), true
}

func evalPrimitive(expr string, item Item, ctx *exprContext) (bool, error) {
	if args, ok := callArgs(expr, "attribute_exists"); ok && len(args) == 1 {
		name, err := ctx.resolveName(args[0])
		if err != nil {
			return false, err
		}
		_, present := item[name]
		return present, nil
	}
	if args, ok := callArgs(expr, "attribute_not_exists"); ok && len(args) == 1 {
		name, err := ctx.resolveName(args[0])
		if err != nil {
			return false, err
		}
		_, present := item[name]
		return !present, nil
	}
	if args, ok := callArgs(expr, "begins_with"); ok && len(args) == 2 {
		v, present, err := ctx.operand(args[0], item)
		if err != nil || !present {
			return false, err
		}
		p, err := ctx.value(args[1])
		if err != nil {
			return false, err
		}
		vs, _ := scalarString(v)
		ps, _ := scalarString(p)
		return strings.HasPrefix(vs, ps), nil
	}
	if args, ok := callArgs(expr, "contains"); ok && len(args) == 2 {
		return evalContains(args, item, ctx)
	}

	upper := strings.ToUpper(expr)
	if idx := strings.Index(upper, " BETWEEN "); idx >= 0 {
		v, present, err := ctx.operand(expr[:idx], item)
		if err != nil || !present {
			return false, err
		}
		bounds := expr[idx+len(" BETWEEN "):]
		andIdx := strings.Index(strings.ToUpper(bounds), " AND ")
		if andIdx < 0 {
			return false, errValidation("Invalid ConditionExpression: BETWEEN requires two bounds")
		}
		lo, _, err := ctx.operand(bounds[:andIdx], item)
		if err != nil {
			return false, err
		}
		hi, _, err := ctx.operand(bounds[andIdx+len(" AND "):], item)
		if err != nil {
			return false, err
		}
		return compareAV(v, lo) >= 0 && compareAV(v, hi) <= 0, nil
	}

	for _, op := range []string{"<>", "<=", ">=", "=", "<", ">"} {
		idx := indexTopLevel(expr, op)
		if idx < 0 {
			continue
		}
		left, lok, err := ctx.operand(expr[:idx], item)
		if err != nil {
			return false, err
		}
		right, rok, err := ctx.operand(expr[idx+len(op):], item)
		if err != nil {
			return false, err
		}
		if !lok || !rok {
			return false, nil
		}
		switch op {
		case "=":
			return avEqual(left, right), nil
		case "<>":
			return !avEqual(left, right), nil
		case "<":
			return compareAV(left, right) < 0, nil
		case "<=":
			return compareAV(left, right) <= 0, nil
		case ">":
			return compareAV(left, right) > 0, nil
		case ">=":
			return compareAV(left, right) >= 0, nil
		}
	}
	return false, errValidation("Invalid ConditionExpression: %s", expr)
}

func indexTopLevel(s, sub string) int {
	depth := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func evalContains(args []string, item Item, ctx *exprContext) (bool, error) {
	target, present, err := ctx.operand(args[0], item)
	if err != nil || !present {
		return false, err
	}
	needle, err := ctx.value(args[1])
	if err != nil {
		return false, err
	}
	if s, ok := avString(target); ok {
		ns, _ := avString(needle)
		return strings.Contains(s, ns), nil
	}
	if _, members, ok := stringSet(target); ok {
		ns, _ := scalarString(needle)
		for _, m := range members {
			if m == ns {
				return true, nil
			}
		}
		return false, nil
	}
	if list, ok := listValue(target); ok {
		for _, el := range list {
			if m, ok := el.(map[string]any); ok && avEqual(m, needle) {
				return true, nil
			}
		}
	}
	return false, nil
}

// applyUpdate applies an UpdateExpression to item in place.
func applyUpdate(expr string, item Item, ctx *exprContext) error {
	type section struct {
		keyword string
		pos     int
	}
	var sections []section
	upper := strings.ToUpper(expr)
	for _, kw := range []string{"SET", "REMOVE", "ADD", "DELETE"} {
		if pos := keywordIndex(upper, kw); pos >= 0 {
			sections = append(sections, section{keyword: kw, pos: pos})
		}
	}
	if len(sections) == 0 {
		return errValidation("Invalid UpdateExpression: %s", expr)
	}
	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			if sections[j].pos < sections[i].pos {
				sections[i], sections[j] = sections[j], sections[i]
			}
		}
	}

	for i, sec := range sections {
		start := sec.pos + len(sec.keyword)
		end := len(expr)
		if i+1 < len(sections) {
			end = sections[i+1].pos
		}
		body := strings.TrimSpace(expr[start:end])
		var err error
		switch sec.keyword {
		case "SET":
			err = applySet(body, item, ctx)
		case "REMOVE":
			err = applyRemove(body, item, ctx)
		case "ADD":
			err = applyAdd(body, item, ctx)
		case "DELETE":
			err = applyDeleteAction(body, item, ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// keywordIndex finds a space-bounded keyword occurrence.
func keywordIndex(upper, kw string) int {
	for from := 0; ; {
		idx := strings.Index(upper[from:], kw)
		if idx < 0 {
			return -1
		}
		idx += from
		beforeOK := idx == 0 || upper[idx-1] == ' '
		after := idx + len(kw)
		afterOK := after < len(upper) && upper[after] == ' '
		if beforeOK && afterOK {
			return idx
		}
		from = idx + len(kw)
	}
}

func applySet(body string, item Item, ctx *exprContext) error {
	for _, assignment := range splitArgs(body) {
		eq := indexTopLevel(assignment, "=")
		if eq < 0 {
			return errValidation("Invalid UpdateExpression: %s", assignment)
		}
		name, err := ctx.resolveName(assignment[:eq])
		if err != nil {
			return err
		}
		value, err := evalSetOperand(assignment[eq+1:], item, ctx)
		if err != nil {
			return err
		}
		item[name] = value
	}
	return nil
}

// evalSetOperand evaluates the right-hand side of a SET assignment:
// if_not_exists, list_append, a single operand, or operand arithmetic.
func evalSetOperand(rhs string, item Item, ctx *exprContext) (AttributeValue, error) {
	rhs = strings.TrimSpace(rhs)

	if args, ok := callArgs(rhs, "if_not_exists"); ok && len(args) == 2 {
		name, err := ctx.resolveName(args[0])
		if err != nil {
			return nil, err
		}
		if existing, present := item[name]; present {
			return existing, nil
		}
		return evalSetOperand(args[1], item, ctx)
	}

	if args, ok := callArgs(rhs, "list_append"); ok && len(args) == 2 {
		left, err := evalSetOperand(args[0], item, ctx)
		if err != nil {
			return nil, err
		}
		right, err := evalSetOperand(args[1], item, ctx)
		if err != nil {
			return nil, err
		}
		ll, lok := listValue(left)
		rl, rok := listValue(right)
		if !lok || !rok {
			return nil, errValidation("Invalid UpdateExpression: list_append operands must be lists")
		}
		return AttributeValue{"L": append(append([]any{}, ll...), rl...)}, nil
	}

	if op, idx := findArithmetic(rhs); idx >= 0 {
		left, err := evalSetOperand(rhs[:idx], item, ctx)
		if err != nil {
			return nil, err
		}
		right, err := evalSetOperand(rhs[idx+1:], item, ctx)
		if err != nil {
			return nil, err
		}
		ln, lok := avNumber(left)
		rn, rok := avNumber(right)
		if !lok || !rok {
			return nil, errValidation("Invalid UpdateExpression: arithmetic operands must be numbers")
		}
		if op == '+' {
			return numberValue(ln + rn), nil
		}
		return numberValue(ln - rn), nil
	}

	value, present, err := ctx.operand(rhs, item)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, errValidation("The provided expression refers to an attribute that does not exist in the item")
	}
	return value, nil
}

// findArithmetic locates a top-level + or -. A minus only counts when it has
// a non-empty left operand, so value references stay intact.
func findArithmetic(s string) (byte, int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '+':
			if depth == 0 {
				return '+', i
			}
		case '-':
			if depth == 0 && i > 0 && strings.TrimSpace(s[:i]) != "" {
				return '-', i
			}
		}
	}
	return 0, -1
}

func applyRemove(body string, item Item, ctx *exprContext) error {
	for _, path := range splitArgs(body) {
		name, err := ctx.resolveName(path)
		if err != nil {
			return err
		}
		delete(item, name)
	}
	return nil
}

func applyAdd(body string, item Item, ctx *exprContext) error {
	for _, action := range splitArgs(body) {
		name, valueToken, ok := splitActionPair(action)
		if !ok {
			return errValidation("Invalid UpdateExpression: %s", action)
		}
		attr, err := ctx.resolveName(name)
		if err != nil {
			return err
		}
		value, err := ctx.value(valueToken)
		if err != nil {
			return err
		}
		existing, present := item[attr]
		if !present {
			item[attr] = value
			continue
		}
		if en, eok := avNumber(existing); eok {
			vn, vok := avNumber(value)
			if !vok {
				return errValidation("Invalid UpdateExpression: ADD value must be a number")
			}
			item[attr] = numberValue(en + vn)
			continue
		}
		tag, members, ok := stringSet(existing)
		if !ok {
			return errValidation("Invalid UpdateExpression: ADD requires a number or set attribute")
		}
		_, add, ok := stringSet(value)
		if !ok {
			return errValidation("Invalid UpdateExpression: ADD value must be a set")
		}
		for _, m := range add {
			found := false
			for _, e := range members {
				if e == m {
					found = true
					break
				}
			}
			if !found {
				members = append(members, m)
			}
		}
		item[attr] = setValue(tag, members)
	}
	return nil
}

func applyDeleteAction(body string, item Item, ctx *exprContext) error {
	for _, action := range splitArgs(body) {
		name, valueToken, ok := splitActionPair(action)
		if !ok {
			return errValidation("Invalid UpdateExpression: %s", action)
		}
		attr, err := ctx.resolveName(name)
		if err != nil {
			return err
		}
		value, err := ctx.value(valueToken)
		if err != nil {
			return err
		}
		existing, present := item[attr]
		if !present {
			continue
		}
		tag, members, ok := stringSet(existing)
		if !ok {
			return errValidation("Invalid UpdateExpression: DELETE requires a set attribute")
		}
		_, remove, ok := stringSet(value)
		if !ok {
			return errValidation("Invalid UpdateExpression: DELETE value must be a set")
		}
		var kept []string
		for _, m := range members {
			drop := false
			for _, rm := range remove {
				if m == rm {
					drop = true
					break
				}
			}
			if !drop {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			delete(item, attr)
			continue
		}
		item[attr] = setValue(tag, kept)
	}
	return nil
}

func splitActionPair(action string) (name, value string, ok bool) {
	action = strings.TrimSpace(action)
	idx := strings.IndexByte(action, ' ')
	if idx < 0 {
		return "", "", false
	}
	return action[:idx], strings.TrimSpace(action[idx+1:]), true
}

// applyProjection filters an item down to a ProjectionExpression. Missing
// attributes are omitted.
func applyProjection(item Item, expr string, ctx *exprContext) (Item, error) {
	if strings.TrimSpace(expr) == "" {
		return item, nil
	}
	out := Item{}
	for _, path := range splitArgs(expr) {
		name, err := ctx.resolveName(path)
		if err != nil {
			return nil, err
		}
		if v, ok := item[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}
