package main

import (
	"encoding/json"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/config"
	"github.com/ohm-grid/power-monitor/internal/domain"
)

// Simulates the ESP32 gateway: publishes a full four-meter batch per
// cycle with plausible street readings.
func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	owners := map[string]string{
		"A-003": "Orangzaib",
		"A-004": "Maliha Bibi",
	}

	for cycle := int64(1); cycle <= 100; cycle++ {
		batch := domain.GatewayBatch{
			CycleNumber:   cycle,
			WifiConnected: true,
		}
		for _, id := range domain.SlotOrder() {
			voltage := 220 + rand.Float64()*10
			current := 2 + rand.Float64()*3
			if id == "A-001" {
				// Street input carries the whole segment.
				current = 8 + rand.Float64()*4
			}
			batch.Meters = append(batch.Meters, domain.MeterReadingInput{
				MeterID:       id,
				Voltage:       voltage,
				Current:       current,
				ApparentPower: voltage * current,
				Consumer:      owners[id],
				Online:        true,
				PacketCount:   cycle,
			})
		}

		payload, _ := json.Marshal(batch)
		token := client.Publish(config.MQTTTopic(), 0, false, payload)
		token.Wait()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
