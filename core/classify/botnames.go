// Package classify decides how much assistant and bot involvement a
// pull request or workflow run carries.
package classify

// CopilotLogin is the canonical login of the coding-assistant bot,
// compared case-insensitively.
const CopilotLogin = "copilot"

// CoAuthorMarker is the commit trailer prefix used for co-authorship.
const CoAuthorMarker = "co-authored-by:"

// ReviewerBotLogins are reviewer logins that always count as an
// assistant review, matched exactly.
var ReviewerBotLogins = map[string]struct{}{
	"copilot-pull-request-reviewer[bot]": {},
}

// AssistantKeywords are phrases in PR titles, bodies and commit
// messages that signal assistant involvement.
var AssistantKeywords = []string{
	"copilot",
	"co-pilot",
	"github copilot",
	"ai-assisted",
	"ai assisted",
}

// ReviewContextKeywords mark review-flavored assistant involvement.
var ReviewContextKeywords = []string{
	"review",
	"feedback",
	"suggestion",
	"comment",
	"approve",
}

// GenerationContextKeywords mark code-generation-flavored involvement.
var GenerationContextKeywords = []string{
	"generate",
	"create",
	"implement",
	"code",
	"develop",
	"write",
}

// DependencyBotLogins are author logins of dependency-update bots,
// compared case-insensitively.
var DependencyBotLogins = map[string]struct{}{
	"dependabot[bot]": {},
	"renovate[bot]":   {},
}

// DependencyTitleMarkers are title phrases of dependency-update PRs.
var DependencyTitleMarkers = []string{
	"bump",
	"update",
	"build(deps",
}

// WorkflowActorAllowList are actor logins whose workflow runs count as
// assistant-triggered, matched exactly.
var WorkflowActorAllowList = map[string]struct{}{
	"Copilot":                {},
	"copilot-swe-agent[bot]": {},
}
