package main

//go:generate swag init -g cmd/oppfinder/main.go -o docs

// @title           Opportunity Finder API
// @version         0.1.0
// @description     Opportunity discovery, scoring and workflow controls.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
