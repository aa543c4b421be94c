// Command racevideo turns the day's race-prediction article into a narrated
// still-image video and uploads it.
//
// Run without arguments from the project root (or with RACEVIDEO_ROOT set)
// to process posts/<today>.html, where today is the date in Japan.
package main
