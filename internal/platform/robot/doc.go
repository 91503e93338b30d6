// Package robot provides the production platform backend. Input
// injection, clipboard access and window focus go through robotgo;
// display capture goes through kbinani/screenshot, which keeps capture
// working without robotgo's optional bitmap module.
package robot
