package main

import "os"

// @title Timetable Board API
// @version 1.0.0
// @description Drag-and-drop weekly timetable sessions
// @BasePath /api/v1
// @schemes http

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
