package main

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/config"
	"github.com/ohm-grid/power-monitor/internal/database"
	"github.com/ohm-grid/power-monitor/internal/domain"
	"github.com/ohm-grid/power-monitor/internal/service"
)

// The ingestor bridges gateway batches published over MQTT into the
// same ingestion path the HTTP push uses.
func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(db)
	if err := svcs.InitMeters(); err != nil {
		log.Fatal().Err(err).Msg("meter init failed")
	}

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var batch domain.GatewayBatch
		if err := json.Unmarshal(msg.Payload(), &batch); err != nil {
			log.Error().Err(err).Msg("bad gateway payload")
			return
		}
		if _, err := svcs.Ingest.Ingest(batch); err != nil {
			log.Error().Err(err).Msg("ingest failed")
		}
	}

	if token := client.Subscribe(config.MQTTTopic(), 0, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", config.MQTTTopic()).Msg("ingestor running; Ctrl+C to stop")
	for {
		time.Sleep(10 * time.Second)
	}
}
