package internal

import (
	"fmt"
	"strings"
)

// Policy governs how eagerly a node re-evaluates.
type Policy uint8

const (
	// PolicyAlways re-evaluates on every update.
	PolicyAlways Policy = iota
	// PolicyIfUpdatesNeeded re-evaluates when an input needs to.
	PolicyIfUpdatesNeeded
	// PolicyEventBased re-evaluates when an input needs to or the node was marked dirty.
	PolicyEventBased
	// PolicyOnce stops re-evaluating after the first non-null value.
	PolicyOnce
)

var policyNames = [...]string{
	PolicyAlways:          "Always",
	PolicyIfUpdatesNeeded: "IfUpdatesNeeded",
	PolicyEventBased:      "EventBased",
	PolicyOnce:            "Once",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", p)
}

func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(name, s) {
			return Policy(p), nil
		}
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

type Kind uint8

const (
	KindPropertyValue Kind = iota
	KindFieldNotifyValue
	KindFunctionValue
	KindStaticFunctionValue
	KindCastObjectValue
	KindContainerLengthValue
	KindFormatTextValue
	KindSelectValue
	KindDestinationProperty
	KindDestinationFunction
)

var kindNames = [...]string{
	KindPropertyValue:        "PropertyValue",
	KindFieldNotifyValue:     "FieldNotifyValue",
	KindFunctionValue:        "FunctionValue",
	KindStaticFunctionValue:  "StaticFunctionValue",
	KindCastObjectValue:      "CastObjectValue",
	KindContainerLengthValue: "ContainerLengthValue",
	KindFormatTextValue:      "FormatTextValue",
	KindSelectValue:          "SelectValue",
	KindDestinationProperty:  "DestinationProperty",
	KindDestinationFunction:  "DestinationFunction",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsDestination reports whether nodes of this kind consume values.
func (k Kind) IsDestination() bool {
	return k == KindDestinationProperty || k == KindDestinationFunction
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNodeKind, s)
}
