// Package mqtt connects the service to the broker that carries the home
// automation host's registries and states.
//
// Topics live under a configurable prefix (default "piholecard"):
//
//	<prefix>/state/<entity_id>            retained entity state (JSON)
//	<prefix>/registry/entity/<entity_id>  retained entity registry entry
//	<prefix>/registry/device/<device_id>  retained device registry entry
//	<prefix>/command/<domain>/<service>   service calls issued by the card
//	<prefix>/system/status                online/offline status and LWT
//
// A bridge on the host mirrors its registries onto these topics and
// executes the commands published back.
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	err = client.Subscribe(client.Topics().AllStates(), client.QoS(), ingester.HandleMessage)
//
// Enable broker TLS (mqtt.broker.tls) outside a trusted LAN.
package mqtt
