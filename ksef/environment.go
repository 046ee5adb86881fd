package ksef

import (
	"fmt"
	"strings"
)

type Environment int

const (
	Test Environment = iota
	Demo
	Prod
)

func (e Environment) BaseURL() string {
	switch e {
	case Prod:
		return "https://api.ksef.mf.gov.pl/v2"
	case Test:
		return "https://api-test.ksef.mf.gov.pl/v2"
	case Demo:
		return "https://api-demo.ksef.mf.gov.pl/v2"
	}
	panic("Invalid environment")
}

func (e Environment) Name() string {
	switch e {
	case Prod:
		return "prod"
	case Test:
		return "test"
	case Demo:
		return "demo"
	}
	panic("Invalid environment")
}

func (e *Environment) UnmarshalText(text []byte) error {
	val := strings.ToLower(strings.TrimSpace(string(text)))

	switch val {
	case "prod":
		*e = Prod
	case "demo":
		*e = Demo
	case "test":
		*e = Test
	default:
		return fmt.Errorf("invalid KSEF_ENV: %q (allowed: prod, demo, test)", val)
	}
	return nil
}
