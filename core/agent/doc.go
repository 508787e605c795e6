// Package agent orchestrates multi-turn conversations with an AI provider:
// tool-call execution, token budgeting, optional answer review, and
// conversation handoff between providers. The provider itself is abstracted
// behind the ai.Connector interface, so an Agent never knows which vendor it
// is talking to.
package agent
