// Package ai defines the provider-neutral chat data model and the Connector
// contract implemented once per AI provider. Conversation histories are held
// in this neutral shape so that a conversation started under one provider can
// be continued under another; only the adaptation step differs per provider.
//
// Connector implementations live in sibling packages such as
// [github.com/modal-agent/mago/providers/ai/openai] and
// [github.com/modal-agent/mago/providers/ai/anthropic].
package ai
