package verify

import "fmt"

// verifySystemPrompt frames the model as a compliance reviewer and
// pins the reply grammar ParseReply expects.
const verifySystemPrompt = `You are a compliance reviewer. You judge whether a document complies with the specification that governs its document type.

Start your reply with exactly one verdict word:
- "yes" if the document fully complies with the specification
- "maybe" if it mostly complies but has questionable areas
- "no" if it violates the specification

After the verdict, list each specific problem on its own line as a "- " bullet. If the document complies, briefly say why.`

// verifyUserPrompt carries the specification and the document under
// review in one message.
const verifyUserPrompt = `Here is the specification:

<specification>
%s
</specification>

Here is the document to review:

<document>
%s
</document>

Does the document comply with the specification?`

// buildVerifyMessages assembles the completion request messages for
// one verification call.
func buildVerifyMessages(specContent, docContent string) (system, user string) {
	return verifySystemPrompt, fmt.Sprintf(verifyUserPrompt, specContent, docContent)
}
