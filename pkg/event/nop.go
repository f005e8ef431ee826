// Copyright 2024 Chainguard, Inc.
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/protocol"
)

// Nop is a CloudEvents client that drops every event.
type Nop struct{}

func (Nop) Send(context.Context, ceevent.Event) protocol.Result {
	return nil
}

func (Nop) Request(context.Context, ceevent.Event) (*ceevent.Event, protocol.Result) {
	return nil, nil
}

func (Nop) StartReceiver(context.Context, interface{}) error {
	return errors.New("nop client cannot receive events")
}
