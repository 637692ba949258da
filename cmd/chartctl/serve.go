package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/song"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

type noteRow struct {
	Tick    Tick    `json:"tick"`
	Fret    string  `json:"fret"`
	Sustain Tick    `json:"sustain"`
	Flag    string  `json:"flag"`
	Seconds float64 `json:"seconds"`
}

type tempoResponse struct {
	Resolution Tick           `json:"resolution"`
	Tempo      []tempoRow     `json:"tempo"`
	Signatures []signatureRow `json:"signatures"`
}

type secondsResponse struct {
	Tick    Tick    `json:"tick"`
	Seconds float64 `json:"seconds"`
}

// server answers read only queries about one loaded song. The song is never
// edited while it is served.
type server struct {
	song *song.Song
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); nil != err {
		log.Println("unable to encode response", err)
	}
}

func parseTickParam(s string, fallback Tick) (Tick, error) {
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if nil != err || v < 0 {
		return 0, fmt.Errorf("invalid tick %q", s)
	}
	return Tick(v), nil
}

func (srv *server) handleTempo(w http.ResponseWriter, r *http.Request) {
	m := srv.song.Tempo
	writeJSON(w, tempoResponse{
		Resolution: m.Resolution,
		Tempo:      tempoRows(m),
		Signatures: signatureRows(m),
	})
}

func (srv *server) handleSeconds(w http.ResponseWriter, r *http.Request) {
	tick, err := parseTickParam(mux.Vars(r)["tick"], 0)
	if nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, secondsResponse{Tick: tick, Seconds: srv.song.Tempo.TickToSeconds(tick)})
}

func (srv *server) handleTrack(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	k, err := chart.ParseTrackKey(vars["instrument"], vars["difficulty"])
	if nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, ok := srv.song.Lookup(k)
	if !ok {
		http.Error(w, fmt.Sprintf("no %v track", k), http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	start, err := parseTickParam(q.Get("start"), 0)
	if nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseTickParam(q.Get("end"), math.MaxInt32)
	if nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := []noteRow{}
	for i, notes := range t.Notes {
		fret := chart.Fret(i)
		for _, tick := range notes.TicksInRange(start, end) {
			n, _ := notes.Get(tick)
			rows = append(rows, noteRow{
				Tick:    tick,
				Fret:    fret.String(),
				Sustain: n.Sustain,
				Flag:    n.Flag.String(),
				Seconds: srv.song.Tempo.TickToSeconds(tick),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Tick < rows[j].Tick })
	writeJSON(w, rows)
}

func newRouter(s *song.Song) http.Handler {
	srv := &server{song: s}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/tempo", srv.handleTempo).Methods(http.MethodGet)
	router.HandleFunc("/seconds/{tick}", srv.handleSeconds).Methods(http.MethodGet)
	router.HandleFunc("/tracks/{instrument}/{difficulty}", srv.handleTrack).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	return c.Handler(router)
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve <chart>",
		Short: "Serves a chart over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parser.Parse(args[0])
			if nil != err {
				return err
			}
			defer s.Close()

			log.Println("serving", args[0], "on", addr)
			return http.ListenAndServe(addr, newRouter(s))
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	return cmd
}
