// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package event publishes recorded votes to an external stream.

Publishing is advisory: a vote is durable once its database row exists,
and a failed publish is logged and otherwise ignored. Events are keyed
by election id so one election's votes stay ordered within a Kafka
partition. Without a configured broker the NopPublisher is used.
*/
package event
