package evaluation

import "ideaeval/internal/schema"

// Contract is the required shape of the first-stage payload. It is derived
// from Result, and both the prompt builder and ParseResult consume it.
var Contract = schema.MustFromStruct(Result{})
