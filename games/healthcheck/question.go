package healthcheck

import (
	"errors"
	"fmt"
	"strings"
)

// Question is one prompt with a green (healthy) and red (unhealthy) pole.
type Question struct {
	Title string `json:"title" mapstructure:"title"`
	Green string `json:"green" mapstructure:"green"`
	Red   string `json:"red" mapstructure:"red"`
}

// QuestionResult is a question together with every answer recorded for it.
type QuestionResult struct {
	Question
	Responses Tally `json:"responses"`
}

// round is a room's private copy of a question plus its answers.
type round struct {
	question  Question
	responses []Category
}

// ValidateQuestions rejects empty lists and untitled prompts.
func ValidateQuestions(qs []Question) error {
	if len(qs) == 0 {
		return errors.New("question list is empty")
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Title) == "" {
			return fmt.Errorf("question %d has no title", i+1)
		}
	}
	return nil
}

// DefaultQuestions returns the standard squad health check prompts.
func DefaultQuestions() []Question {
	return []Question{
		{
			Title: "Delivering Value",
			Green: "We deliver great stuff! We're proud of it and our stakeholders are really happy.",
			Red:   "We deliver crap. We feel ashamed to deliver it. Our stakeholders hate us.",
		},
		{
			Title: "Easy to Release",
			Green: "Releasing is simple, safe, painless and mostly automated.",
			Red:   "Releasing is risky, painful, lots of manual work and takes forever.",
		},
		{
			Title: "Fun",
			Green: "We love going to work and have great fun working together!",
			Red:   "Boooooooring...",
		},
		{
			Title: "Health of Codebase",
			Green: "We're proud of the quality of our code! It is clean, easy to read and has great test coverage.",
			Red:   "Our code is a pile of dung and technical debt is raging out of control.",
		},
		{
			Title: "Learning",
			Green: "We're learning lots of interesting stuff all the time!",
			Red:   "We never have time to learn anything.",
		},
		{
			Title: "Mission",
			Green: "We know exactly why we are here and we're really excited about it!",
			Red:   "We have no idea why we are here, there's no high level picture or focus. Our so called mission is completely unclear and uninspiring.",
		},
		{
			Title: "Pawns or Players",
			Green: "We are in control of our own destiny! We decide what to build and how to build it.",
			Red:   "We are just pawns in a game of chess with no influence over what we build or how we build it.",
		},
		{
			Title: "Speed",
			Green: "We get stuff done really quickly! No waiting and no delays.",
			Red:   "We never seem to get anything done. We keep getting stuck or interrupted. Stories keep getting stuck on dependencies.",
		},
		{
			Title: "Suitable Process",
			Green: "Our way of working fits us perfectly!",
			Red:   "Our way of working sucks!",
		},
		{
			Title: "Support",
			Green: "We always get great support and help when we ask for it!",
			Red:   "We keep getting stuck because we can't get the support and help that we ask for.",
		},
		{
			Title: "Teamwork",
			Green: "We are a totally gelled super-team with awesome collaboration!",
			Red:   "We are a bunch of individuals that neither know nor care about what the other people in the squad are doing.",
		},
	}
}
