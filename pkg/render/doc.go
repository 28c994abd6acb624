// Package render turns an acknowledgement [model.Model] into a markdown
// document.
//
// # Templates
//
// Documents are produced with text/template. The embedded default template
// handles all three formats; [Load] reads a custom one instead. Templates
// execute against the model and may use these functions:
//
//   - plural N "singular" "plural": chooses a word form for count N
//   - name PERSON MENTION: the person as a markdown link, or as an
//     @-mention when MENTION is set and the person has a GitHub account
//   - mention PERSON: "@login" for GitHub accounts, the bare name otherwise
//   - link PERSON: "[login](profile)" when a profile is known
//   - join LIST SEP: strings.Join
//
// Rendering never writes files; the caller decides where the output goes,
// by default [FileName] next to the manifest.
package render
