package preprocess

import "regexp"

// Abbreviations maps QA-domain shorthand to full forms. Caller-supplied
// entries are merged over this map and win on key collision.
var Abbreviations = map[string]string{
	// Testing types
	"tc":  "test case",
	"ts":  "test scenario",
	"tp":  "test plan",
	"uat": "user acceptance testing",
	"sit": "system integration testing",
	"e2e": "end to end",
	"api": "application programming interface",
	"ui":  "user interface",
	"db":  "database",
	"qa":  "quality assurance",
	"qc":  "quality control",

	// Defect related
	"rca": "root cause analysis",
	"bug": "defect",
	"rtm": "requirements traceability matrix",
	"sr":  "service request",
	"cr":  "change request",
	"pr":  "pull request",

	// Process related
	"bdd": "behavior driven development",
	"tdd": "test driven development",
	"dod": "definition of done",
	"dor": "definition of ready",
	"sla": "service level agreement",

	// Common testing
	"regression": "regression testing",
	"smoke":      "smoke testing",
	"sanity":     "sanity testing",
	"negative":   "negative testing",
	"positive":   "positive testing",
	"boundary":   "boundary value testing",
}

// Synonyms maps recognized terms to alternate phrasings used for query
// variation generation.
var Synonyms = map[string][]string{
	// Test case related
	"negative": {"invalid", "error", "failure", "exception"},
	"positive": {"valid", "success", "pass"},
	"timeout":  {"delay", "hang", "slow", "stuck", "unresponsive"},
	"payment":  {"transaction", "billing", "charge", "invoice", "checkout"},

	// Test execution
	"pass":   {"success", "valid", "working"},
	"fail":   {"error", "issue", "problem", "defect"},
	"verify": {"validate", "confirm", "check", "assert"},
	"login":  {"authentication", "sign in", "authorize"},
	"logout": {"sign out", "disconnect"},

	// Search related
	"find":   {"search", "locate", "get", "retrieve", "query"},
	"test":   {"check", "validate", "verify", "confirm"},
	"create": {"add", "new", "insert", "initialize"},
	"update": {"edit", "modify", "change"},
	"delete": {"remove", "drop", "purge"},

	// Status related
	"active":    {"enabled", "running", "online", "working"},
	"inactive":  {"disabled", "offline", "stopped"},
	"pending":   {"waiting", "in progress", "processing"},
	"completed": {"done", "finished", "successful"},
}

// identifierPatterns match structured ticket-style identifiers embedded in
// queries (TC-001, BUG-1234, PROJ-42). Specific prefixes come first; the
// generic prefix-dash-digits pattern catches the rest.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bTC-\d+`),
	regexp.MustCompile(`(?i)\bTEST-\d+`),
	regexp.MustCompile(`(?i)\bUS-\d+`),
	regexp.MustCompile(`(?i)\bBUG-\d+`),
	regexp.MustCompile(`(?i)\b[A-Z]+-\d+`),
}
