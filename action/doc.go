// Package action turns free-form reasoning model output into executable
// actions. Parsing happens in two independent stages:
//
//  1. ParseOutput locates the "Thought:" and "Action:" markers in one round of
//     model output and returns their values.
//  2. Parse interprets an action string as one of three variants: a Finish
//     carrying the final answer, a ToolCall carrying a tool name plus named
//     string arguments, or Unparseable.
//
// The grammar accepted by Parse:
//
//	action := ident ws* ( group | ':' rest | rest )
//	group  := '[' args ']' | '(' args ')'
//	args   := ( pair | junk )*
//	pair   := ident ws* '=' ws* quoted
//	quoted := '"' ( '\"' | '\\' | [^"] )* '"'
//
// An identifier equal to "finish" (any case) selects the Finish variant.
// Argument scanning is lenient: anything between pairs is skipped. Both
// stages are pure functions that never panic, so parsing the same text twice
// always yields the same result.
package action
