package detector

import "errors"

// ErrProtocol marks a response from the LLM that breaks the tool-calling
// contract: a tool call with an unexpected name, missing required arguments,
// or a final payload that does not match the declared schema. It is fatal
// for the detection call it occurs in.
var ErrProtocol = errors.New("protocol violation")
