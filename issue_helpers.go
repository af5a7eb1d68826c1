package polyskema

// IssueAt creates an Issue at the given path with provided code, message and params map.
func IssueAt(path, code, msg string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: msg, Params: params}
}

// SingleIssue wraps one issue as an error.
func SingleIssue(path, code, msg string) error {
	return Issues{Issue{Path: path, Code: code, Message: msg}}
}

// RebaseIssues prefixes every issue path in err with base (a JSON Pointer such
// as "/radius"). Errors that are not Issues become a parse_error at base.
func RebaseIssues(base string, err error) Issues {
	if err == nil {
		return nil
	}
	child, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
