package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/samthor/rowreorder/order"
	"github.com/samthor/rowreorder/remote"
)

func main() {
	var records []order.Record
	for _, group := range []string{"todo", "done"} {
		for i := range 5 {
			records = append(records, order.Record{
				ID:       fmt.Sprintf("%s-%d", group, i+1),
				Position: i + 1,
				Group:    group,
				HasGroup: true,
			})
		}
	}

	store, err := remote.NewStore(true, records...)
	if err != nil {
		log.Fatalf("couldn't build store: %v", err)
	}

	limit := &remote.LimitConfig{Burst: 10, Rate: 5}
	http.Handle("/reorder", store.Handler(limit))
	http.Handle("/reorder/sock", store.SocketHandler(limit, &websocket.AcceptOptions{InsecureSkipVerify: true}))
	http.HandleFunc("/reorder/list", func(w http.ResponseWriter, r *http.Request) {
		domain, ok := store.Records(r.URL.Query().Get("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		for _, rec := range domain {
			fmt.Fprintf(w, "%d\t%s\n", rec.Position, rec.ID)
		}
	})

	err = remote.ListenAndServe(&remote.ServeOpts{ServeAll: true})
	log.Fatalf("shutdown: %v", err)
}
