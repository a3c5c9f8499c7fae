package monitor_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/duckyzx/OoOcpusim/monitor"
	"github.com/duckyzx/OoOcpusim/timing/pipeline"
	"github.com/duckyzx/OoOcpusim/trace"
)

var _ = Describe("Monitor", func() {
	var (
		pipe *pipeline.Pipeline
		ts   *httptest.Server
		mon  *monitor.Server
	)

	BeforeEach(func() {
		var err error
		pipe, err = pipeline.New(pipeline.Config{
			FetchWidth: 1,
			CDBWidth:   1,
			NumFU0:     1,
			NumFU1:     1,
			NumFU2:     1,
		}, trace.NewSliceSource(
			trace.Record{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
		))
		Expect(err).NotTo(HaveOccurred())

		mon = monitor.New(pipe, "127.0.0.1:0")
		ts = httptest.NewServer(mon.Handler())
	})

	AfterEach(func() {
		ts.Close()
	})

	getStats := func() map[string]any {
		resp, err := http.Get(ts.URL + "/api/stats")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

		var payload map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
		return payload
	}

	It("should serve the live counters", func() {
		pipe.Run()

		payload := getStats()
		Expect(payload["run_id"]).To(Equal(mon.RunID()))
		Expect(payload["fetched"]).To(BeEquivalentTo(1))
		Expect(payload["retired"]).To(BeEquivalentTo(1))
	})

	It("should report zeros before the run starts", func() {
		payload := getStats()
		Expect(payload["cycle"]).To(BeEquivalentTo(0))
		Expect(payload["retired"]).To(BeEquivalentTo(0))
	})

	It("should reject non-GET requests", func() {
		resp, err := http.Post(ts.URL+"/api/stats", "application/json", nil)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
	})
})
