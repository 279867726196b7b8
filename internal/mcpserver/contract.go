package mcpserver

// ShareGuideURI is the resource URI of ShareGuide.
const ShareGuideURI = "noteshare://share-guide"

// ShareGuide explains the share tools to LLM consumers.
const ShareGuide = `# Note Share Guide

Notes are addressed by their 32-character lowercase hex id.

## Output

Every tool produces one standalone HTML document. Attachments referenced as
` + "`![label](:/<id>)`" + ` or ` + "`[label](:/<id>)`" + ` are embedded as data URIs, so the
file opens offline with no other files next to it. An attachment that cannot
be read is replaced by a visible "attachment unavailable" marker.

## Share types

- ` + "`public`" + `: the page is readable by anyone who has the file.
- ` + "`encrypted`" + `: the page asks for a password before showing the note.
  The password is stored in the page itself, so this only deters casual
  readers. When no password is given one is generated and returned.

## Settings

- ` + "`expiration`" + `: validity in days, 1 to 365. Missing or zero means 7.
- ` + "`path`" + `: file name relative to the share directory. Missing means the
  note title with ` + "`\\ / : * ? \" < > |`" + ` replaced by ` + "`_`" + `, plus ` + "`.html`" + `.
`
