package util

import (
	"fmt"

	"holdem-server/internal/rng"
)

var adjectives = []string{
	"Fast", "Slow", "Quick", "Lucky", "Bluffing", "Folding", "Gracious", "Happy", "Funny", "Stone-Faced",
	"Red", "Blue", "Green", "Orange", "Purple", "Fuzzy", "Smiling", "Tall", "Grand", "Ultimate", "Prime",
	"Alpha", "Growling", "Sly", "Swimming", "Flying", "Jumping", "Running", "Charging", "Patient", "Bouncing",
	"Reckless", "Tight",
}

var animals = []string{
	"Dog", "Cat", "Mouse", "Alligator", "Crocodile", "Shark", "Hippo", "Giraffe", "Antelope", "Lion", "Tiger",
	"Bear", "Muskrat", "Otter", "Dolphin", "Porcupine", "Gerbil", "Hedgehog", "Snake", "Lizard", "Chipmunk",
	"Fish", "Dinosaur", "Okapi", "Eagle", "Mandrill", "Bonobo", "Wolf", "Fox", "Armadillo", "Rhino", "Whale",
	"Donkey", "Deer", "Panda",
}

// RandomRoomName combines an adjective with an animal, e.g. "Lucky Okapi"
func RandomRoomName(r rng.Generator) string {
	return fmt.Sprintf("%s %s", adjectives[r.Intn(len(adjectives))], animals[r.Intn(len(animals))])
}
